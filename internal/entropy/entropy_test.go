package entropy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShannon(t *testing.T) {
	assert.Equal(t, 0.0, Shannon(""))
	assert.Equal(t, 0.0, Shannon(strings.Repeat("a", 40)))
	assert.InDelta(t, 1.0, Shannon("abababab"), 1e-9)
	assert.InDelta(t, 4.6219, Shannon("abcdefghijklmnopqrstuvwxyzabcdefghijklmn"), 1e-3)
}

func TestCharClasses(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"abcdef", 1},
		{"ABCdef", 2},
		{"abc123", 2},
		{"aB3", 3},
		{"+/=-_", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CharClasses(tt.in), tt.in)
	}
}

func TestCandidates(t *testing.T) {
	t.Run("requires 32 characters", func(t *testing.T) {
		assert.Empty(t, Candidates("short_token_1234567890abcdefghi"))
		assert.Len(t, Candidates(strings.Repeat("x", 32)), 1)
	})

	t.Run("runs are maximal and ordered", func(t *testing.T) {
		first := strings.Repeat("A1", 20)
		second := strings.Repeat("b/", 20)
		got := Candidates("x " + first + " y " + second + "!")
		require.Len(t, got, 2)
		assert.Equal(t, first, got[0])
		assert.Equal(t, second, got[1])
	})
}

func TestDetect(t *testing.T) {
	t.Run("single character class is not flagged", func(t *testing.T) {
		lower := "abcdefghijklmnopqrstuvwxyzabcdefghijklmn"
		h, _ := IsSuspicious(lower)
		require.Greater(t, h, Threshold)
		assert.Empty(t, Detect("value: "+lower))
	})

	t.Run("mixed classes with high entropy are flagged", func(t *testing.T) {
		token := "Xk9mP2vR7tL4wQ8nB5cJ1hF6gD3sA0zYeUiOoTrQ"
		hits := Detect("token=" + token + " end")
		require.Len(t, hits, 1)
		// '=' is in the token alphabet, so the run includes the key
		assert.Equal(t, "token="+token, hits[0].Value)
		assert.Greater(t, hits[0].Entropy, Threshold)
	})

	t.Run("natural language is not flagged", func(t *testing.T) {
		assert.Empty(t, Detect("thisisaverylongidentifiernamewithoutdigits and more words"))
	})

	t.Run("low entropy repeated run is not flagged", func(t *testing.T) {
		assert.Empty(t, Detect(strings.Repeat("Ab1", 20)))
	})
}
