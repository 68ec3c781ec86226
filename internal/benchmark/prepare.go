package benchmark

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/CodeSwitch-Lab/csw-forge/pkg/dataset"
)

// Corpus names accepted by Prepare
const (
	CorpusBelebele = "belebele"
	CorpusMMLU     = "mmlu"
	CorpusXNLI     = "xnli"
)

// AllCorpora lists every supported benchmark
var AllCorpora = []string{CorpusBelebele, CorpusMMLU, CorpusXNLI}

// Prepare builds the named corpus table
func (c *Client) Prepare(ctx context.Context, corpus string) (*dataset.Table, error) {
	switch corpus {
	case CorpusBelebele:
		return c.PrepareBelebele(ctx)
	case CorpusMMLU:
		return c.PrepareMMLU(ctx)
	case CorpusXNLI:
		return c.PrepareXNLI(ctx)
	default:
		return nil, fmt.Errorf("unknown corpus: %s", corpus)
	}
}

// PrepareTo builds the named corpus and writes it as <corpus>.csv under
// outputDir, returning the written path.
func (c *Client) PrepareTo(ctx context.Context, corpus, outputDir string) (string, error) {
	table, err := c.Prepare(ctx, corpus)
	if err != nil {
		return "", err
	}
	path := filepath.Join(outputDir, corpus+".csv")
	if err := table.Save(path); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	c.logger.Info().
		Str("corpus", corpus).
		Str("path", path).
		Int("rows", table.NumRows()).
		Msg("Benchmark corpus prepared")
	return path, nil
}
