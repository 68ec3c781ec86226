package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "parallel.csv")

	table := NewTable("eng_premise", "fra_premise")
	require.NoError(t, table.AppendRow([]string{"The cat sat on the mat.", "Le chat était assis sur le tapis."}))
	require.NoError(t, table.AppendRow([]string{"A quoted, cell", "Une cellule\navec saut de ligne"}))

	require.NoError(t, table.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, table.Header, loaded.Header)
	assert.Equal(t, table.Rows, loaded.Rows)
}

func TestTableLoadRejectsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestTableValidate(t *testing.T) {
	tests := []struct {
		name    string
		table   *Table
		wantErr string
	}{
		{
			name:    "no columns",
			table:   &Table{},
			wantErr: "no columns",
		},
		{
			name:    "duplicate column",
			table:   &Table{Header: []string{"a", "a"}},
			wantErr: "duplicate column",
		},
		{
			name:    "empty column name",
			table:   &Table{Header: []string{"a", ""}},
			wantErr: "empty column name",
		},
		{
			name: "ragged row",
			table: &Table{
				Header: []string{"a", "b"},
				Rows:   [][]string{{"only one"}},
			},
			wantErr: "row 0",
		},
		{
			name: "valid",
			table: &Table{
				Header: []string{"a", "b"},
				Rows:   [][]string{{"1", "2"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestTableColumnOperations(t *testing.T) {
	table := NewTable("eng_question", "arb_question")
	require.NoError(t, table.AppendRow([]string{"What is the capital?", "ما هي العاصمة؟"}))
	require.NoError(t, table.AppendRow([]string{"Where is the station?", "أين المحطة؟"}))

	col, err := table.Column("eng_question")
	require.NoError(t, err)
	assert.Equal(t, []string{"What is the capital?", "Where is the station?"}, col)

	cell, err := table.Cell(1, "arb_question")
	require.NoError(t, err)
	assert.Equal(t, "أين المحطة؟", cell)

	_, err = table.Column("missing")
	assert.Error(t, err)

	_, err = table.Cell(5, "eng_question")
	assert.Error(t, err)

	require.NoError(t, table.AddColumn("placeholder_text", []string{"What is the #######?", "Where is the #######?"}))
	assert.True(t, table.HasColumn("placeholder_text"))
	assert.Equal(t, 3, table.NumColumns())

	// Mismatched lengths and duplicates are rejected
	assert.Error(t, table.AddColumn("short", []string{"x"}))
	assert.Error(t, table.AddColumn("placeholder_text", []string{"a", "b"}))
}

func TestTableDeduplicateByKeepsFirst(t *testing.T) {
	table := NewTable("src", "tgt")
	require.NoError(t, table.AppendRow([]string{"hello", "bonjour"}))
	require.NoError(t, table.AppendRow([]string{"hello", "salut"}))
	require.NoError(t, table.AppendRow([]string{"bye", "au revoir"}))

	deduped, err := table.DeduplicateBy("src")
	require.NoError(t, err)
	require.Equal(t, 2, deduped.NumRows())
	assert.Equal(t, []string{"hello", "bonjour"}, deduped.Rows[0])
	assert.Equal(t, []string{"bye", "au revoir"}, deduped.Rows[1])

	// Original table is untouched
	assert.Equal(t, 3, table.NumRows())
}

func TestTableHead(t *testing.T) {
	table := NewTable("src")
	for _, v := range []string{"a", "b", "c"} {
		require.NoError(t, table.AppendRow([]string{v}))
	}

	assert.Equal(t, 2, table.Head(2).NumRows())
	assert.Equal(t, 3, table.Head(10).NumRows())
	assert.Equal(t, 0, table.Head(-1).NumRows())
}

func TestTableCloneIsIndependent(t *testing.T) {
	table := NewTable("src")
	require.NoError(t, table.AppendRow([]string{"hello"}))

	clone := table.Clone()
	clone.Rows[0][0] = "changed"
	require.NoError(t, clone.AddColumn("extra", []string{"x"}))

	assert.Equal(t, "hello", table.Rows[0][0])
	assert.Equal(t, 1, table.NumColumns())
	assert.Equal(t, 2, clone.NumColumns())
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "belebele_with_csw_arb.csv", OutputName("datasets/belebele.csv", "csw_arb"))
	assert.Equal(t, "xnli_with_mixed.csv", OutputName("/tmp/data/xnli.csv", "mixed"))
	assert.Equal(t, filepath.Join("out", "mmlu_with_csw_fra.csv"), OutputPath("out", "mmlu.csv", "csw_fra"))
}
