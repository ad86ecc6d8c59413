package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReduceConfidence(t *testing.T) {
	tests := []struct {
		name          string
		retrieval     bool
		alignment     bool
		hallucination bool
		numerical     bool
		expected      Confidence
	}{
		{
			name:      "all pass",
			retrieval: true, alignment: true, hallucination: true, numerical: true,
			expected: ConfidenceHigh,
		},
		{
			name:      "hallucination fails alone",
			retrieval: true, alignment: true, hallucination: false, numerical: true,
			expected: ConfidenceMedium,
		},
		{
			name:      "numerical fails alone",
			retrieval: true, alignment: true, hallucination: true, numerical: false,
			expected: ConfidenceMedium,
		},
		{
			name:      "alignment fails alone",
			retrieval: true, alignment: false, hallucination: true, numerical: true,
			expected: ConfidenceLow,
		},
		{
			name:      "both secondary checks fail",
			retrieval: true, alignment: true, hallucination: false, numerical: false,
			expected: ConfidenceLow,
		},
		{
			name:      "alignment and numerical fail",
			retrieval: true, alignment: false, hallucination: true, numerical: false,
			expected: ConfidenceLow,
		},
		{
			name:      "retrieval fails alone",
			retrieval: false, alignment: true, hallucination: true, numerical: true,
			expected: ConfidenceRejected,
		},
		{
			name:      "retrieval fails with everything else",
			retrieval: false, alignment: false, hallucination: false, numerical: false,
			expected: ConfidenceRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReduceConfidence(tt.retrieval, tt.alignment, tt.hallucination, tt.numerical)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestConfidenceSafeToUse(t *testing.T) {
	assert.True(t, ConfidenceHigh.SafeToUse())
	assert.True(t, ConfidenceMedium.SafeToUse())
	assert.False(t, ConfidenceLow.SafeToUse())
	assert.False(t, ConfidenceRejected.SafeToUse())
}

func TestConfidenceIsValid(t *testing.T) {
	for _, c := range []Confidence{ConfidenceHigh, ConfidenceMedium, ConfidenceLow, ConfidenceRejected} {
		assert.True(t, c.IsValid(), c.String())
	}
	assert.False(t, Confidence("certain").IsValid())
}

func TestValidationResultCheck(t *testing.T) {
	result := ValidationResult{
		Confidence: ConfidenceMedium,
		Checks: []CheckResult{
			{Type: CheckRetrievalQuality, Passed: true, Detail: "top score 0.82"},
			{Type: CheckNumericalAccuracy, Passed: false, Detail: "1 of 2 numbers unmatched"},
		},
	}

	check, ok := result.Check(CheckNumericalAccuracy)
	assert.True(t, ok)
	assert.False(t, check.Passed)

	_, ok = result.Check(CheckHallucination)
	assert.False(t, ok)

	assert.True(t, result.Passed(CheckRetrievalQuality))
	assert.False(t, result.Passed(CheckNumericalAccuracy))
	assert.False(t, result.Passed(CheckSourceAlignment), "absent checks count as failed")
}
