package domain

// Confidence classifies how trustworthy a generated answer is.
// The level is a deterministic reduction of the four check outcomes,
// never a learned or weighted score.
type Confidence string

// Confidence levels, ordered from most to least trustworthy.
const (
	// ConfidenceHigh means all four checks passed.
	ConfidenceHigh Confidence = "high"

	// ConfidenceMedium means retrieval quality and source alignment
	// passed but exactly one of the other two checks failed.
	ConfidenceMedium Confidence = "medium"

	// ConfidenceLow means any other single or multiple failure that
	// does not involve retrieval quality.
	ConfidenceLow Confidence = "low"

	// ConfidenceRejected means retrieval quality failed: no chunk was
	// relevant enough to trust any answer. The answer is withheld or
	// flagged with an insufficient-evidence marker.
	ConfidenceRejected Confidence = "rejected"
)

// IsValid returns true if the confidence level is recognised.
func (c Confidence) IsValid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow, ConfidenceRejected:
		return true
	default:
		return false
	}
}

// SafeToUse returns true when the answer may be shown without an
// explicit caution marker.
func (c Confidence) SafeToUse() bool {
	return c == ConfidenceHigh || c == ConfidenceMedium
}

// String returns the string representation.
func (c Confidence) String() string {
	return string(c)
}

// CheckType identifies one of the validator's four independent checks.
type CheckType string

// Validator check types.
const (
	// CheckRetrievalQuality fails when the top candidate's combined
	// score is below the configured minimum.
	CheckRetrievalQuality CheckType = "retrieval_quality"

	// CheckSourceAlignment fails when too few content-bearing answer
	// tokens appear anywhere in the candidate text.
	CheckSourceAlignment CheckType = "source_alignment"

	// CheckHallucination fails on contradictory or unsupported-specific
	// answer patterns.
	CheckHallucination CheckType = "hallucination"

	// CheckNumericalAccuracy fails when a numeric token in the answer
	// does not appear in any candidate.
	CheckNumericalAccuracy CheckType = "numerical_accuracy"
)

// CheckResult is one check's outcome.
type CheckResult struct {
	// Type identifies the check.
	Type CheckType

	// Passed is the pass/fail outcome.
	Passed bool

	// Detail is a short human-readable explanation, always set.
	Detail string
}

// Warning is a check-tagged message attached to a validation result.
type Warning struct {
	// Check is the check that produced the warning.
	Check CheckType

	// Message is the warning text.
	Message string
}

// ValidationResult is the validator's verdict on a generated answer.
// It is created per-query and never persisted beyond the response.
type ValidationResult struct {
	// Confidence is the reduced confidence level.
	Confidence Confidence

	// Checks holds all four check outcomes in a fixed order.
	Checks []CheckResult

	// Warnings holds the check-tagged warnings, possibly empty.
	Warnings []Warning
}

// Check returns the result for the given check type.
// The second return is false when the check is absent.
func (v ValidationResult) Check(t CheckType) (CheckResult, bool) {
	for _, c := range v.Checks {
		if c.Type == t {
			return c, true
		}
	}
	return CheckResult{}, false
}

// Passed reports whether the named check passed. Absent checks count
// as failed.
func (v ValidationResult) Passed(t CheckType) bool {
	c, ok := v.Check(t)
	return ok && c.Passed
}

// ReduceConfidence applies the fixed decision table to the four check
// outcomes:
//
//   - all pass                                        -> high
//   - retrieval quality fails (regardless of others)  -> rejected
//   - retrieval + alignment pass, one other fails     -> medium
//   - anything else                                   -> low
func ReduceConfidence(retrieval, alignment, hallucination, numerical bool) Confidence {
	if !retrieval {
		return ConfidenceRejected
	}
	if retrieval && alignment && hallucination && numerical {
		return ConfidenceHigh
	}
	if alignment && (hallucination != numerical) {
		return ConfidenceMedium
	}
	return ConfidenceLow
}
