package benchmark

import (
	"context"
	"fmt"

	"github.com/CodeSwitch-Lab/csw-forge/pkg/dataset"
)

// mmluConfigs maps output language prefixes to the openai/MMMLU configs.
// English questions come from cais/mmlu instead.
var mmluConfigs = []struct {
	Lang   string
	Config string
}{
	{"fra", "FR_FR"},
	{"deu", "DE_DE"},
	{"arb", "AR_XY"},
	{"zho", "ZH_CN"},
}

// PrepareMMLU aligns English MMLU questions with their human translations
// from MMMLU into one parallel table. Rows align by position.
func (c *Client) PrepareMMLU(ctx context.Context) (*dataset.Table, error) {
	engRows, err := c.FetchRows(ctx, "cais/mmlu", "all", "test")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mmlu: %w", err)
	}

	header := []string{"eng_mmlu_question"}
	columns := [][]string{make([]string, 0, len(engRows))}
	for i, row := range engRows {
		question, err := row.String("question")
		if err != nil {
			return nil, fmt.Errorf("mmlu row %d: %w", i, err)
		}
		columns[0] = append(columns[0], question)
	}

	for _, cfg := range mmluConfigs {
		rows, err := c.FetchRows(ctx, "openai/MMMLU", cfg.Config, "test")
		if err != nil {
			return nil, fmt.Errorf("failed to fetch mmmlu %s: %w", cfg.Config, err)
		}
		if len(rows) != len(engRows) {
			return nil, fmt.Errorf("mmmlu %s has %d rows, expected %d", cfg.Config, len(rows), len(engRows))
		}
		column := make([]string, 0, len(rows))
		for i, row := range rows {
			// The MMMLU column name is capitalized
			question, err := row.String("Question")
			if err != nil {
				return nil, fmt.Errorf("mmmlu %s row %d: %w", cfg.Config, i, err)
			}
			column = append(column, question)
		}
		header = append(header, cfg.Lang+"_mmlu_question")
		columns = append(columns, column)
	}

	table := dataset.NewTable(header...)
	for i := range engRows {
		row := make([]string, len(columns))
		for j, column := range columns {
			row[j] = column[i]
		}
		if err := table.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return table, nil
}
