package switching

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeSwitch-Lab/csw-forge/internal/provider"
	"github.com/CodeSwitch-Lab/csw-forge/pkg/dataset"
)

// fakeProvider returns canned responses in call order
type fakeProvider struct {
	mu         sync.Mutex
	response   string
	responses  []string
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeProvider) Complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPrompt = prompt
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) > 0 {
		resp := f.responses[0]
		f.responses = f.responses[1:]
		return resp, nil
	}
	return f.response, nil
}

func (f *fakeProvider) GetModelName() string        { return "fake-model" }
func (f *fakeProvider) GetProviderName() string     { return "fake" }
func (f *fakeProvider) IsAvailable() bool           { return true }
func (f *fakeProvider) EstimateCost(string) float64 { return 0 }

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestEngine(p provider.Provider) *SwitchEngine {
	return NewSwitchEngine(provider.NewRegistry(p), nil, DefaultEngineConfig())
}

func nounRequest() *SwitchRequest {
	return &SwitchRequest{
		RowIndex:        0,
		SourceText:      "The cat sat on the mat.",
		TargetTexts:     []string{"Le chat était assis sur le tapis."},
		TargetLanguages: []string{"French"},
		Strategy:        StrategyNoun,
	}
}

func TestSwitchNounStrategy(t *testing.T) {
	p := &fakeProvider{responses: []string{
		"The ####### sat on the #######.",
		"The chat sat on the tapis.",
	}}
	engine := newTestEngine(p)

	result := engine.Switch(context.Background(), "fake", nounRequest())

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "The ####### sat on the #######.", result.PlaceholderText)
	assert.Equal(t, "The chat sat on the tapis.", result.SwitchedText)
	assert.Equal(t, 2, result.MaskCount)
	assert.Equal(t, 0, result.LeftoverMasks)
	assert.Equal(t, "fake-model", result.GenerationModel)
	assert.Equal(t, 2, p.callCount())
}

func TestSwitchEmptySourceFails(t *testing.T) {
	engine := newTestEngine(&fakeProvider{})

	req := nounRequest()
	req.SourceText = ""
	result := engine.Switch(context.Background(), "fake", req)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "empty")
}

func TestSwitchUnknownProviderFails(t *testing.T) {
	engine := newTestEngine(&fakeProvider{})

	result := engine.Switch(context.Background(), "missing", nounRequest())

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestSwitchGenerationErrorIsResult(t *testing.T) {
	engine := newTestEngine(&fakeProvider{err: errors.New("rate limited")})

	result := engine.Switch(context.Background(), "fake", nounRequest())

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "rate limited")

	metrics := engine.GetMetrics()
	assert.Equal(t, int64(1), metrics.RowsProcessed)
	assert.Equal(t, int64(1), metrics.RowsFailed)
}

func TestSwitchRandomStrategySkipsMaskCall(t *testing.T) {
	p := &fakeProvider{response: "The chat sat on the tapis."}
	engine := newTestEngine(p)

	req := nounRequest()
	req.Strategy = StrategyRandom
	req.MaskRate = 0.2
	result := engine.Switch(context.Background(), "fake", req)

	require.True(t, result.Success, result.Error)
	assert.Equal(t, 1, result.MaskCount)
	// Only the fill stage talks to the model
	assert.Equal(t, 1, p.callCount())
}

func TestSwitchSkipsMaskWhenPlaceholderPresent(t *testing.T) {
	p := &fakeProvider{response: "The chat sat on the mat."}
	engine := newTestEngine(p)

	req := nounRequest()
	req.PlaceholderText = "The ####### sat on the mat."
	result := engine.Switch(context.Background(), "fake", req)

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "The ####### sat on the mat.", result.PlaceholderText)
	assert.Equal(t, 1, p.callCount())
}

func TestSwitchRecordsLeftoverMasks(t *testing.T) {
	p := &fakeProvider{responses: []string{
		"The ####### sat on the #######.",
		"The chat sat on the #######.",
	}}
	engine := newTestEngine(p)

	result := engine.Switch(context.Background(), "fake", nounRequest())

	require.True(t, result.Success)
	assert.Equal(t, 1, result.LeftoverMasks)

	metrics := engine.GetMetrics()
	assert.Equal(t, int64(1), metrics.LeftoverMasks)
}

func TestSwitchMultiStrategy(t *testing.T) {
	p := &fakeProvider{responses: []string{
		"The ####### sat on the #######.",
		"The chat sat on the Matte.",
	}}
	engine := newTestEngine(p)

	req := &SwitchRequest{
		SourceText:      "The cat sat on the mat.",
		TargetTexts:     []string{"Le chat était assis sur le tapis.", "Die Katze saß auf der Matte."},
		TargetLanguages: []string{"French", "German"},
		Strategy:        StrategyMulti,
	}
	result := engine.Switch(context.Background(), "fake", req)

	require.True(t, result.Success, result.Error)
	assert.Contains(t, p.lastPrompt, "[French text]")
	assert.Contains(t, p.lastPrompt, "[German text]")
}

func TestSwitchBatchPreservesOrder(t *testing.T) {
	p := &fakeProvider{response: "filled"}
	engine := NewSwitchEngine(provider.NewRegistry(p), nil, &EngineConfig{
		MaxConcurrentRequests: 4,
		DefaultTimeout:        DefaultEngineConfig().DefaultTimeout,
	})

	reqs := make([]*SwitchRequest, 5)
	for i := range reqs {
		req := nounRequest()
		req.RowIndex = i
		req.Strategy = StrategyRandom
		reqs[i] = req
	}

	results := engine.SwitchBatch(context.Background(), "fake", reqs)

	require.Len(t, results, 5)
	for i, res := range results {
		assert.Equal(t, i, res.RowIndex)
		assert.True(t, res.Success)
	}
}

func TestRunAppendsColumns(t *testing.T) {
	p := &fakeProvider{responses: []string{
		"The ####### runs.", "The chien runs.",
		"A ####### barks.", "A chien barks.",
	}}
	engine := newTestEngine(p)

	table := dataset.NewTable("eng_text", "fra_text")
	require.NoError(t, table.AppendRow([]string{"The dog runs.", "Le chien court."}))
	require.NoError(t, table.AppendRow([]string{"A dog barks.", "Un chien aboie."}))

	out, err := engine.Run(context.Background(), table, &RunConfig{
		Strategy:        StrategyNoun,
		SourceColumn:    "eng_text",
		TargetColumns:   []string{"fra_text"},
		TargetLanguages: []string{"French"},
		CSWColumn:       "csw_fra",
		Provider:        "fake",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"eng_text", "fra_text", PlaceholderColumn, "csw_fra"}, out.Header)
	require.Equal(t, 2, out.NumRows())

	switched, err := out.Column("csw_fra")
	require.NoError(t, err)
	for _, text := range switched {
		assert.True(t, strings.Contains(text, "chien"))
	}
}

func TestRunSampleSize(t *testing.T) {
	p := &fakeProvider{response: "filled"}
	engine := newTestEngine(p)

	table := dataset.NewTable("eng_text", "fra_text")
	require.NoError(t, table.AppendRow([]string{"same sentence", "même phrase"}))
	require.NoError(t, table.AppendRow([]string{"same sentence", "même phrase"}))
	require.NoError(t, table.AppendRow([]string{"another sentence", "autre phrase"}))

	out, err := engine.Run(context.Background(), table, &RunConfig{
		Strategy:        StrategyRandom,
		SourceColumn:    "eng_text",
		TargetColumns:   []string{"fra_text"},
		TargetLanguages: []string{"French"},
		CSWColumn:       "csw_fra",
		Provider:        "fake",
		SampleSize:      1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.NumRows())
}

func TestRunMissingColumn(t *testing.T) {
	engine := newTestEngine(&fakeProvider{})

	table := dataset.NewTable("eng_text")
	_, err := engine.Run(context.Background(), table, &RunConfig{
		Strategy:        StrategyNoun,
		SourceColumn:    "eng_text",
		TargetColumns:   []string{"fra_text"},
		TargetLanguages: []string{"French"},
		CSWColumn:       "csw_fra",
		Provider:        "fake",
	})
	assert.Error(t, err)
}

func TestRunConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  RunConfig
	}{
		{"unknown strategy", RunConfig{Strategy: "verbs", SourceColumn: "a", TargetColumns: []string{"b"}, TargetLanguages: []string{"French"}, CSWColumn: "c", Provider: "p"}},
		{"missing source", RunConfig{Strategy: StrategyNoun, TargetColumns: []string{"b"}, TargetLanguages: []string{"French"}, CSWColumn: "c", Provider: "p"}},
		{"language mismatch", RunConfig{Strategy: StrategyMulti, SourceColumn: "a", TargetColumns: []string{"b", "c"}, TargetLanguages: []string{"French"}, CSWColumn: "d", Provider: "p"}},
		{"multiple columns for single strategy", RunConfig{Strategy: StrategyNoun, SourceColumn: "a", TargetColumns: []string{"b", "c"}, TargetLanguages: []string{"French", "German"}, CSWColumn: "d", Provider: "p"}},
		{"bad mask rate", RunConfig{Strategy: StrategyRandom, SourceColumn: "a", TargetColumns: []string{"b"}, TargetLanguages: []string{"French"}, CSWColumn: "c", Provider: "p", MaskRate: 1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}
}

func TestEngineMetrics(t *testing.T) {
	p := &fakeProvider{response: "filled"}
	engine := newTestEngine(p)

	req := nounRequest()
	req.Strategy = StrategyRandom
	engine.Switch(context.Background(), "fake", req)

	metrics := engine.GetMetrics()
	assert.Equal(t, int64(1), metrics.RowsProcessed)
	assert.Equal(t, int64(1), metrics.RowsSucceeded)
	assert.Contains(t, metrics.ModelPerformance, "fake-model")
	assert.Equal(t, int64(1), metrics.ModelPerformance["fake-model"].SuccessCount)
}
