package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsGradedTerminal(t *testing.T) {
	for _, raw := range []string{"graded", "GRADED", "Passed", " assessed ", "Completed"} {
		assert.True(t, IsGradedTerminal(raw), raw)
	}
	for _, raw := range []string{"", "IN_PROGRESS", "pass", "grading", "ASSESSABLE"} {
		assert.False(t, IsGradedTerminal(raw), raw)
	}
}

func TestNormalizeWeeks(t *testing.T) {
	assert.Equal(t, 24, NormalizeWeeks(24))
	assert.Equal(t, 1, NormalizeWeeks(1))
	assert.Equal(t, MaxWeeks, NormalizeWeeks(MaxWeeks))
	assert.Equal(t, MaxWeeks, NormalizeWeeks(0))
	assert.Equal(t, MaxWeeks, NormalizeWeeks(-3))
	assert.Equal(t, MaxWeeks, NormalizeWeeks(53))
}
