package switching

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/CodeSwitch-Lab/csw-forge/internal/prompt"
	"github.com/CodeSwitch-Lab/csw-forge/internal/provider"
)

// Masker produces the placeholder sentence for one request
type Masker interface {
	MaskText(ctx context.Context, req *SwitchRequest) (string, error)
}

// LLMMasker asks a language model to identify switch points
type LLMMasker struct {
	provider provider.Provider
	strategy Strategy
}

// NewLLMMasker creates a masker for the noun, reverse and multi strategies
func NewLLMMasker(p provider.Provider, strategy Strategy) (*LLMMasker, error) {
	switch strategy {
	case StrategyNoun, StrategyReverse, StrategyMulti:
		return &LLMMasker{provider: p, strategy: strategy}, nil
	default:
		return nil, fmt.Errorf("strategy %s does not use a model for masking", strategy)
	}
}

func (m *LLMMasker) MaskText(ctx context.Context, req *SwitchRequest) (string, error) {
	var (
		promptText string
		err        error
	)
	switch m.strategy {
	case StrategyNoun:
		promptText, err = prompt.NounMask(req.SourceText)
	case StrategyReverse:
		promptText, err = prompt.ReverseMask(req.TargetTexts[0], req.TargetLanguages[0])
	case StrategyMulti:
		promptText, err = prompt.ExtremeMask(req.SourceText)
	default:
		return "", fmt.Errorf("unsupported masking strategy: %s", m.strategy)
	}
	if err != nil {
		return "", fmt.Errorf("failed to render mask prompt: %w", err)
	}

	masked, err := m.provider.Complete(ctx, promptText)
	if err != nil {
		return "", fmt.Errorf("mask call failed: %w", err)
	}
	return strings.TrimSpace(masked), nil
}

// RandomMasker masks a fraction of whitespace-separated words locally,
// without a model call. At least one word is always masked.
type RandomMasker struct {
	rate float64
	rng  *rand.Rand
}

// NewRandomMasker creates a local masker. A rate of 0 uses DefaultMaskRate.
func NewRandomMasker(rate float64, rng *rand.Rand) *RandomMasker {
	if rate <= 0 {
		rate = DefaultMaskRate
	}
	return &RandomMasker{rate: rate, rng: rng}
}

func (m *RandomMasker) MaskText(_ context.Context, req *SwitchRequest) (string, error) {
	words := strings.Fields(req.SourceText)
	if len(words) == 0 {
		return "", fmt.Errorf("source text has no words to mask")
	}

	count := int(float64(len(words)) * m.rate)
	if count < 1 {
		count = 1
	}
	if count > len(words) {
		count = len(words)
	}

	var perm []int
	if m.rng != nil {
		perm = m.rng.Perm(len(words))
	} else {
		perm = rand.Perm(len(words))
	}
	for _, idx := range perm[:count] {
		words[idx] = prompt.Mask
	}
	return strings.Join(words, " "), nil
}
