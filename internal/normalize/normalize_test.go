package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCanonicalForm(t *testing.T) {
	t.Parallel()

	normalized, fingerprint, err := Normalize("  Great POST!!! 🚀🚀  Really,   really good. ")
	require.NoError(t, err)

	assert.Equal(t, "great post really really good", normalized)
	assert.Len(t, fingerprint, 64)
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	first, firstFP, err := Normalize("Shipping v2.0 today — huge thanks to the team! 🎉")
	require.NoError(t, err)

	second, secondFP, err := Normalize(first)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstFP, secondFP)
}

func TestNormalizeDeterministicFingerprints(t *testing.T) {
	t.Parallel()

	// Identical normalized text yields equal fingerprints even when the
	// raw inputs differ in case, punctuation and emoji.
	_, a, err := Normalize("Hello, World! 👋")
	require.NoError(t, err)
	_, b, err := Normalize("hello world")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// A single-character difference in normalized text changes the digest.
	_, c, err := Normalize("hello worle")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestNormalizeRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "   ", "🎉🎉🎉", "!!!"} {
		_, _, err := Normalize(input)
		assert.ErrorIs(t, err, ErrEmptyContent, "input %q", input)
	}
}
