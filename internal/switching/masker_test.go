package switching

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeSwitch-Lab/csw-forge/internal/prompt"
)

func TestRandomMaskerMasksAtLeastOneWord(t *testing.T) {
	masker := NewRandomMasker(0.2, rand.New(rand.NewSource(1)))

	req := &SwitchRequest{SourceText: "hello world"}
	masked, err := masker.MaskText(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, prompt.CountMasks(masked))
	assert.Len(t, strings.Fields(masked), 2)
}

func TestRandomMaskerRate(t *testing.T) {
	masker := NewRandomMasker(0.5, rand.New(rand.NewSource(42)))

	words := make([]string, 10)
	for i := range words {
		words[i] = "word"
	}
	req := &SwitchRequest{SourceText: strings.Join(words, " ")}

	masked, err := masker.MaskText(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 5, prompt.CountMasks(masked))
	assert.Len(t, strings.Fields(masked), 10)
}

func TestRandomMaskerDefaultRate(t *testing.T) {
	masker := NewRandomMasker(0, rand.New(rand.NewSource(7)))

	words := make([]string, 20)
	for i := range words {
		words[i] = "word"
	}
	req := &SwitchRequest{SourceText: strings.Join(words, " ")}

	masked, err := masker.MaskText(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 4, prompt.CountMasks(masked))
}

func TestRandomMaskerEmptyText(t *testing.T) {
	masker := NewRandomMasker(0.2, rand.New(rand.NewSource(1)))

	_, err := masker.MaskText(context.Background(), &SwitchRequest{SourceText: "   "})
	assert.Error(t, err)
}

func TestLLMMaskerRejectsRandomStrategy(t *testing.T) {
	_, err := NewLLMMasker(&fakeProvider{}, StrategyRandom)
	assert.Error(t, err)
}

func TestLLMMaskerNoun(t *testing.T) {
	p := &fakeProvider{response: "The ####### sat on the #######.  "}
	masker, err := NewLLMMasker(p, StrategyNoun)
	require.NoError(t, err)

	req := &SwitchRequest{
		SourceText:      "The cat sat on the mat.",
		TargetTexts:     []string{"Le chat était assis sur le tapis."},
		TargetLanguages: []string{"French"},
		Strategy:        StrategyNoun,
	}
	masked, err := masker.MaskText(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "The ####### sat on the #######.", masked)
	assert.Contains(t, p.lastPrompt, "The cat sat on the mat.")
	assert.Contains(t, p.lastPrompt, "Equivalence Constraint Theory")
}

func TestLLMMaskerReverseUsesTargetText(t *testing.T) {
	p := &fakeProvider{response: "Le ####### était assis sur le tapis."}
	masker, err := NewLLMMasker(p, StrategyReverse)
	require.NoError(t, err)

	req := &SwitchRequest{
		SourceText:      "The cat sat on the mat.",
		TargetTexts:     []string{"Le chat était assis sur le tapis."},
		TargetLanguages: []string{"French"},
		Strategy:        StrategyReverse,
	}
	_, err = masker.MaskText(context.Background(), req)
	require.NoError(t, err)

	assert.Contains(t, p.lastPrompt, "Le chat était assis sur le tapis.")
	assert.Contains(t, p.lastPrompt, "French")
}
