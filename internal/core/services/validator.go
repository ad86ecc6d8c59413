package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/parchment-labs/fundqa/internal/core/domain"
)

// Validator runs the multi-stage answer checks. Small generation
// models are prone to hallucination and extraction errors, so every
// answer is checked against the retrieved evidence before it reaches
// the caller. Validation never errors; a bad answer is a verdict, not
// a failure.
type Validator struct {
	settings domain.ValidationSettings
}

// NewValidator creates a validator with the given thresholds.
func NewValidator(settings domain.ValidationSettings) *Validator {
	return &Validator{settings: settings}
}

// numberPattern matches currency amounts, percentages and plain
// numbers, including thousands separators and a space before %.
var numberPattern = regexp.MustCompile(`[$€£]?\d[\d,]*(?:\.\d+)?(?:\s*%)?`)

// claimPattern matches "<subject> is/was <number>" statements, used
// to spot an answer contradicting itself about a named quantity.
var claimPattern = regexp.MustCompile(`([a-z][a-z ]{2,40}?)\s+(?:is|was|are|were)\s+([$€£]?\d[\d,]*(?:\.\d+)?(?:\s*%)?)`)

// citationPattern matches "Source N" references, whose numbers are
// citations rather than factual claims.
var citationPattern = regexp.MustCompile(`(?i)\bsource\s+\d+`)

// stopwords excluded from the source-alignment overlap. Only
// content-bearing tokens count as evidence of grounding.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"of": {}, "to": {}, "in": {}, "on": {}, "at": {}, "by": {},
	"for": {}, "with": {}, "from": {}, "as": {}, "that": {}, "this": {},
	"it": {}, "its": {}, "their": {}, "there": {}, "which": {}, "has": {},
	"have": {}, "had": {}, "not": {}, "no": {}, "per": {}, "about": {},
	"according": {}, "source": {}, "will": {}, "can": {}, "may": {},
}

// Validate runs all four checks and reduces them to a confidence level.
func (v *Validator) Validate(question, answer string, candidates []domain.RetrievalCandidate) domain.ValidationResult {
	var result domain.ValidationResult

	retrieval := v.checkRetrievalQuality(candidates)
	alignment := v.checkSourceAlignment(answer, candidates)
	hallucination := v.checkHallucination(answer, candidates)
	numerical := v.checkNumericalAccuracy(answer, candidates)

	result.Checks = []domain.CheckResult{retrieval, alignment, hallucination, numerical}
	for _, c := range result.Checks {
		if !c.Passed {
			result.Warnings = append(result.Warnings, domain.Warning{
				Check:   c.Type,
				Message: c.Detail,
			})
		}
	}

	result.Confidence = domain.ReduceConfidence(
		retrieval.Passed, alignment.Passed, hallucination.Passed, numerical.Passed)
	return result
}

// checkRetrievalQuality fails when the best candidate scored below the
// relevance threshold. No candidates at all is the worst case.
func (v *Validator) checkRetrievalQuality(candidates []domain.RetrievalCandidate) domain.CheckResult {
	res := domain.CheckResult{Type: domain.CheckRetrievalQuality}
	if len(candidates) == 0 {
		res.Detail = "no candidates retrieved"
		return res
	}

	top := candidates[0].CombinedScore
	for _, c := range candidates[1:] {
		if c.CombinedScore > top {
			top = c.CombinedScore
		}
	}

	if top < v.settings.MinRetrievalScore {
		res.Detail = fmt.Sprintf("low retrieval quality (top score %.2f, minimum %.2f)",
			top, v.settings.MinRetrievalScore)
		return res
	}

	res.Passed = true
	res.Detail = fmt.Sprintf("top score %.2f", top)
	return res
}

// checkSourceAlignment measures what fraction of the answer's
// content-bearing tokens appear anywhere in the candidate text.
func (v *Validator) checkSourceAlignment(answer string, candidates []domain.RetrievalCandidate) domain.CheckResult {
	res := domain.CheckResult{Type: domain.CheckSourceAlignment}

	answerTokens := contentTokens(answer)
	if len(answerTokens) == 0 {
		res.Passed = true
		res.Detail = "no content-bearing tokens to align"
		return res
	}

	sourceTokens := make(map[string]struct{})
	for _, c := range candidates {
		for _, tok := range tokenise(c.Chunk.Content) {
			sourceTokens[tok] = struct{}{}
		}
	}

	matched := 0
	for tok := range answerTokens {
		if _, ok := sourceTokens[tok]; ok {
			matched++
		}
	}
	ratio := float64(matched) / float64(len(answerTokens))

	if ratio < v.settings.MinAlignment {
		res.Detail = fmt.Sprintf("answer poorly supported by sources (overlap %.2f, minimum %.2f)",
			ratio, v.settings.MinAlignment)
		return res
	}

	res.Passed = true
	res.Detail = fmt.Sprintf("token overlap %.2f", ratio)
	return res
}

// checkHallucination looks for patterns small models produce when
// inventing content: denial followed by detail, self-contradictory
// numeric claims, and percentages absent from every source.
func (v *Validator) checkHallucination(answer string, candidates []domain.RetrievalCandidate) domain.CheckResult {
	res := domain.CheckResult{Type: domain.CheckHallucination}
	lower := strings.ToLower(answer)

	var indicators []string

	claimsNoInfo := strings.Contains(lower, "cannot find") || strings.Contains(lower, "not available")
	if claimsNoInfo && len(strings.Fields(answer)) > 20 {
		indicators = append(indicators, "claims no information but provides detail")
	}

	if subject, ok := conflictingClaim(lower); ok {
		indicators = append(indicators, fmt.Sprintf("conflicting values stated for %q", subject))
	}

	if pct, ok := unsupportedPercentage(answer, candidates); ok {
		indicators = append(indicators, fmt.Sprintf("percentage %s not present in any source", pct))
	}

	if len(indicators) > 0 {
		res.Detail = strings.Join(indicators, "; ")
		return res
	}

	res.Passed = true
	res.Detail = "no hallucination indicators"
	return res
}

// conflictingClaim reports a subject the answer assigns two different
// numeric values.
func conflictingClaim(lowerAnswer string) (string, bool) {
	claims := claimPattern.FindAllStringSubmatch(lowerAnswer, -1)
	seen := make(map[string]string, len(claims))
	for _, m := range claims {
		subject := claimSubject(m[1])
		value := NormaliseNumber(m[2])
		if prev, ok := seen[subject]; ok && prev != value {
			return subject, true
		}
		seen[subject] = value
	}
	return "", false
}

// claimSubject reduces a matched subject phrase to its trailing noun
// words, so "later it says the redemption fee" and "the redemption
// fee" name the same quantity.
func claimSubject(phrase string) string {
	words := strings.Fields(strings.TrimSpace(phrase))
	kept := words[:0]
	for _, w := range words {
		if _, ok := stopwords[w]; ok {
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) > 2 {
		kept = kept[len(kept)-2:]
	}
	return strings.Join(kept, " ")
}

// stripCitations removes "Source N" references before number
// extraction; citation indices are not factual claims.
func stripCitations(answer string) string {
	return citationPattern.ReplaceAllString(answer, "")
}

// unsupportedPercentage reports a percentage the answer states that no
// candidate contains.
func unsupportedPercentage(answer string, candidates []domain.RetrievalCandidate) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	sourceNumbers := candidateNumbers(candidates)
	for _, tok := range ExtractNumbers(stripCitations(answer)) {
		if !strings.HasSuffix(tok, "%") {
			continue
		}
		if _, ok := sourceNumbers[tok]; !ok {
			return tok, true
		}
	}
	return "", false
}

// checkNumericalAccuracy requires every numeric token in the answer to
// appear in at least one candidate. Financial figures must be exact.
func (v *Validator) checkNumericalAccuracy(answer string, candidates []domain.RetrievalCandidate) domain.CheckResult {
	res := domain.CheckResult{Type: domain.CheckNumericalAccuracy}

	answerNumbers := ExtractNumbers(stripCitations(answer))
	if len(answerNumbers) == 0 {
		res.Passed = true
		res.Detail = "no numbers in answer"
		return res
	}

	sourceNumbers := candidateNumbers(candidates)
	var missing []string
	for _, num := range answerNumbers {
		if _, ok := sourceNumbers[num]; !ok {
			missing = append(missing, num)
		}
	}

	if len(missing) > 0 {
		res.Detail = fmt.Sprintf("numbers not found in sources: %s", strings.Join(missing, ", "))
		return res
	}

	res.Passed = true
	res.Detail = fmt.Sprintf("all %d numbers matched", len(answerNumbers))
	return res
}

func candidateNumbers(candidates []domain.RetrievalCandidate) map[string]struct{} {
	numbers := make(map[string]struct{})
	for _, c := range candidates {
		for _, num := range ExtractNumbers(c.Chunk.Content) {
			numbers[num] = struct{}{}
		}
	}
	return numbers
}

// ExtractNumbers returns all numeric tokens in the text in canonical
// form: currency amounts, percentages and plain numbers.
func ExtractNumbers(text string) []string {
	matches := numberPattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, NormaliseNumber(m))
	}
	return out
}

// NormaliseNumber canonicalises a numeric token: thousands commas and
// the whitespace before a trailing % are removed, a leading currency
// symbol is kept. The fractional part compares verbatim, so 2.5% and
// 2.50% stay distinct.
func NormaliseNumber(tok string) string {
	tok = strings.ToLower(strings.TrimSpace(tok))
	tok = strings.ReplaceAll(tok, ",", "")
	tok = strings.ReplaceAll(tok, " ", "")
	tok = strings.ReplaceAll(tok, "\t", "")
	return tok
}

// contentTokens returns the set of content-bearing tokens in the text:
// lowercased, punctuation-stripped, stopwords and single characters
// excluded.
func contentTokens(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range tokenise(text) {
		if len(tok) <= 1 {
			continue
		}
		if _, ok := stopwords[tok]; ok {
			continue
		}
		tokens[tok] = struct{}{}
	}
	return tokens
}

// tokenise lowercases the text, replaces punctuation with spaces and
// splits into tokens. Digits, %, currency symbols and interior decimal
// points are kept so numeric tokens survive intact.
func tokenise(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9',
			r == '%', r == '$', r == '€', r == '£', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	fields := strings.Fields(b.String())
	out := fields[:0]
	for _, tok := range fields {
		tok = strings.Trim(tok, ".")
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
