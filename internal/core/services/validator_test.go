package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parchment-labs/fundqa/internal/core/domain"
)

func defaultValidator() *Validator {
	return NewValidator(domain.ValidationSettings{
		MinRetrievalScore: 0.3,
		MinAlignment:      0.5,
	})
}

func candidate(content string, combined float64) domain.RetrievalCandidate {
	return domain.RetrievalCandidate{
		Chunk:         domain.Chunk{ID: "c1", Content: content},
		CombinedScore: combined,
	}
}

func TestNormaliseNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "percent with space", in: "5 %", want: "5%"},
		{name: "thousands commas", in: "$1,234.56", want: "$1234.56"},
		{name: "fraction kept verbatim", in: "2.50%", want: "2.50%"},
		{name: "plain number", in: "42", want: "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormaliseNumber(tt.in))
		})
	}
}

func TestExtractNumbers(t *testing.T) {
	numbers := ExtractNumbers("The fee is 2.5% of proceeds, capped at $1,000.00 after 90 days.")
	assert.Equal(t, []string{"2.5%", "$1000.00", "90"}, numbers)
}

func TestValidateAllChecksPass(t *testing.T) {
	v := defaultValidator()
	candidates := []domain.RetrievalCandidate{
		candidate("The redemption fee is 2.5% of redemption proceeds for shares held under 90 days.", 0.8),
	}

	result := v.Validate(
		"What is the redemption fee?",
		"According to Source 1, the redemption fee is 2.5% of redemption proceeds.",
		candidates,
	)

	assert.Equal(t, domain.ConfidenceHigh, result.Confidence)
	assert.Empty(t, result.Warnings)
	require.Len(t, result.Checks, 4)
	for _, c := range result.Checks {
		assert.True(t, c.Passed, "check %s", c.Type)
	}
}

func TestValidateRetrievalFailureRejects(t *testing.T) {
	v := defaultValidator()
	candidates := []domain.RetrievalCandidate{
		candidate("Unrelated text about portfolio holdings.", 0.1),
	}

	result := v.Validate("What is the fee?", "The fee is huge.", candidates)

	assert.Equal(t, domain.ConfidenceRejected, result.Confidence)
	assert.False(t, result.Passed(domain.CheckRetrievalQuality))
}

func TestValidateNoCandidatesRejects(t *testing.T) {
	v := defaultValidator()

	result := v.Validate("Anything?", "Some answer.", nil)

	assert.Equal(t, domain.ConfidenceRejected, result.Confidence)
}

func TestValidateWrongNumberFailsNumericalAccuracy(t *testing.T) {
	v := defaultValidator()
	candidates := []domain.RetrievalCandidate{
		candidate("The redemption fee is 2.5% of redemption proceeds.", 0.8),
	}

	result := v.Validate(
		"What is the redemption fee?",
		"According to Source 1, the redemption fee is 3% of redemption proceeds.",
		candidates,
	)

	assert.False(t, result.Passed(domain.CheckNumericalAccuracy))
	// The unsupported percentage also trips the hallucination check,
	// so confidence cannot be better than low.
	assert.Contains(t, []domain.Confidence{domain.ConfidenceLow, domain.ConfidenceRejected}, result.Confidence)
	assert.NotEmpty(t, result.Warnings)
}

func TestValidateFormattingInsensitiveNumberMatch(t *testing.T) {
	v := defaultValidator()
	candidates := []domain.RetrievalCandidate{
		candidate("Total net assets were $1,234,567 with a management fee of 5 %.", 0.8),
	}

	result := v.Validate(
		"What were the total net assets?",
		"Total net assets were $1234567 and the management fee was 5%.",
		candidates,
	)

	assert.True(t, result.Passed(domain.CheckNumericalAccuracy))
}

func TestValidatePoorAlignmentFails(t *testing.T) {
	v := defaultValidator()
	candidates := []domain.RetrievalCandidate{
		candidate("The fund invests in municipal bonds.", 0.8),
	}

	result := v.Validate(
		"What does the fund invest in?",
		"Cryptocurrency futures dominate holdings alongside venture stakes.",
		candidates,
	)

	assert.False(t, result.Passed(domain.CheckSourceAlignment))
	assert.Equal(t, domain.ConfidenceLow, result.Confidence)
}

func TestValidateContradictoryDenialFailsHallucination(t *testing.T) {
	v := defaultValidator()
	candidates := []domain.RetrievalCandidate{
		candidate("The fund charges a management fee and invests in corporate bonds and equities.", 0.8),
	}

	result := v.Validate(
		"What is the expense policy?",
		"I cannot find this information, however the fund charges a management fee and invests in corporate bonds and equities across several regional markets worldwide today and tomorrow.",
		candidates,
	)

	assert.False(t, result.Passed(domain.CheckHallucination))
}

func TestValidateConflictingClaimsFailHallucination(t *testing.T) {
	v := defaultValidator()
	candidates := []domain.RetrievalCandidate{
		candidate("The redemption fee is 2.5% and applies to early redemptions. The redemption fee is waived for retirement accounts.", 0.8),
	}

	result := v.Validate(
		"What is the redemption fee?",
		"The redemption fee is 2.5% for early redemptions. The redemption fee is 2.5% overall.",
		candidates,
	)
	assert.True(t, result.Passed(domain.CheckHallucination), "consistent claims should pass")

	result = v.Validate(
		"What is the redemption fee?",
		"The redemption fee is 2.5% for early redemptions. Later it says the redemption fee is 4%.",
		candidates,
	)
	assert.False(t, result.Passed(domain.CheckHallucination), "conflicting claims should fail")
}

func TestReduceConfidenceDecisionTable(t *testing.T) {
	tests := []struct {
		name                                         string
		retrieval, alignment, hallucination, numeric bool
		want                                         domain.Confidence
	}{
		{"all pass", true, true, true, true, domain.ConfidenceHigh},
		{"retrieval fails alone", false, true, true, true, domain.ConfidenceRejected},
		{"retrieval fails with others", false, false, false, false, domain.ConfidenceRejected},
		{"hallucination fails", true, true, false, true, domain.ConfidenceMedium},
		{"numerical fails", true, true, true, false, domain.ConfidenceMedium},
		{"both extras fail", true, true, false, false, domain.ConfidenceLow},
		{"alignment fails alone", true, false, true, true, domain.ConfidenceLow},
		{"alignment and numerical fail", true, false, true, false, domain.ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.ReduceConfidence(tt.retrieval, tt.alignment, tt.hallucination, tt.numeric)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateNoNumbersPassesNumericalCheck(t *testing.T) {
	v := defaultValidator()
	candidates := []domain.RetrievalCandidate{
		candidate("The fund invests primarily in investment-grade corporate bonds.", 0.8),
	}

	result := v.Validate(
		"What does the fund invest in?",
		"The fund invests primarily in investment-grade corporate bonds.",
		candidates,
	)

	check, ok := result.Check(domain.CheckNumericalAccuracy)
	require.True(t, ok)
	assert.True(t, check.Passed)
}
