package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNounMaskPrompt(t *testing.T) {
	p, err := NounMask("The dog chased the ball.")
	require.NoError(t, err)

	assert.Contains(t, p, "Equivalence Constraint Theory")
	assert.Contains(t, p, "Matrix Language Frame model")
	assert.Contains(t, p, "[English text]\nThe dog chased the ball.")
	assert.Contains(t, p, Mask)
}

func TestReverseMaskPrompt(t *testing.T) {
	p, err := ReverseMask("Le chien a poursuivi la balle.", "French")
	require.NoError(t, err)

	assert.Contains(t, p, "input French sentence")
	assert.Contains(t, p, "[French text]\nLe chien a poursuivi la balle.")
	assert.Contains(t, p, "Adjust the English words as needed")
}

func TestExtremeMaskPromptOmitsMLF(t *testing.T) {
	p, err := ExtremeMask("A sentence about trains.")
	require.NoError(t, err)

	assert.Contains(t, p, "Equivalence Constraint Theory")
	assert.NotContains(t, p, "Matrix Language Frame")
}

func TestFillPrompt(t *testing.T) {
	p, err := Fill("The ####### chased the #######.", "Der Hund jagte den Ball.", "German")
	require.NoError(t, err)

	assert.Contains(t, p, "[English text with placeholders]\nThe ####### chased the #######.")
	assert.Contains(t, p, "[German text]\nDer Hund jagte den Ball.")
	assert.Contains(t, p, "[Code-switched English and German]")
	assert.Contains(t, p, "Use only the words from the German text.")
}

func TestRandomFillPrompt(t *testing.T) {
	p, err := RandomFill("The ####### barked.", "الكلب نبح.", "Arabic")
	require.NoError(t, err)

	assert.Contains(t, p, "[English with placeholders]\nThe ####### barked.")
	assert.Contains(t, p, "[Arabic parallel text]")
	assert.Contains(t, p, "[Mixed code-switched result]")
}

func TestReverseFillPrompt(t *testing.T) {
	p, err := ReverseFill("Le ####### aboie.", "The dog barks.", "French")
	require.NoError(t, err)

	assert.Contains(t, p, "[French text with placeholders]\nLe ####### aboie.")
	assert.Contains(t, p, "[English text]\nThe dog barks.")
	assert.Contains(t, p, "Use only the words from the English text.")
	assert.Contains(t, p, "[Reverse code-switched French and English]")
}

func TestMultiFillPrompt(t *testing.T) {
	p, err := MultiFill(
		"The ####### saw a #######.",
		[]string{"Le chien a vu un chat.", "Der Hund sah eine Katze."},
		[]string{"French", "German"},
	)
	require.NoError(t, err)

	assert.Contains(t, p, "[French text]\nLe chien a vu un chat.")
	assert.Contains(t, p, "[German text]\nDer Hund sah eine Katze.")
	assert.Contains(t, p, "grounded with the principles of the Equivalence Constraint Theory and the Matrix Language Frame model")
	assert.Contains(t, p, "Distribute replacements as evenly as possible")
	assert.Less(t,
		strings.Index(p, "Replace each ####### with text"),
		strings.Index(p, "Equivalence Constraint Theory"))
	assert.Less(t,
		strings.Index(p, "Equivalence Constraint Theory"),
		strings.Index(p, "Distribute replacements"))

	// Parallel sections appear in the order given
	assert.Less(t, strings.Index(p, "[French text]"), strings.Index(p, "[German text]"))
}

func TestMultiFillLengthMismatch(t *testing.T) {
	_, err := MultiFill("x", []string{"a", "b"}, []string{"French"})
	assert.Error(t, err)
}

func TestCountMasks(t *testing.T) {
	assert.Equal(t, 0, CountMasks("no masks here"))
	assert.Equal(t, 2, CountMasks("a ####### and a #######"))
}
