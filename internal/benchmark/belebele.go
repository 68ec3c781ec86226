package benchmark

import (
	"context"
	"fmt"
	"sort"

	"github.com/CodeSwitch-Lab/csw-forge/pkg/dataset"
)

// belebeleConfigs pairs the output language prefix with the dataset config.
// English comes first because it also contributes the answer columns.
var belebeleConfigs = []struct {
	Lang   string
	Config string
}{
	{"eng", "eng_Latn"},
	{"fra", "fra_Latn"},
	{"deu", "deu_Latn"},
	{"arb", "arb_Arab"},
	{"zho", "zho_Hans"},
}

// PrepareBelebele aligns the language configs of facebook/belebele by their
// FLORES link and produces one wide parallel table.
func (c *Client) PrepareBelebele(ctx context.Context) (*dataset.Table, error) {
	perLang := make(map[string][]Row, len(belebeleConfigs))
	for _, cfg := range belebeleConfigs {
		rows, err := c.FetchRows(ctx, "facebook/belebele", cfg.Config, "test")
		if err != nil {
			return nil, fmt.Errorf("failed to fetch belebele %s: %w", cfg.Config, err)
		}
		// Configs are aligned by sorting on the shared FLORES link
		sort.SliceStable(rows, func(i, j int) bool {
			a, _ := rows[i].String("link")
			b, _ := rows[j].String("link")
			return a < b
		})
		perLang[cfg.Lang] = rows
	}

	numRows := len(perLang["eng"])
	for _, cfg := range belebeleConfigs {
		if len(perLang[cfg.Lang]) != numRows {
			return nil, fmt.Errorf("belebele config %s has %d rows, expected %d", cfg.Config, len(perLang[cfg.Lang]), numRows)
		}
	}

	header := []string{"mc_answer1", "mc_answer2", "mc_answer3", "mc_answer4", "correct_answer_num"}
	for _, cfg := range belebeleConfigs {
		header = append(header, cfg.Lang+"_flores_passage", cfg.Lang+"_question")
	}
	table := dataset.NewTable(header...)

	for i := 0; i < numRows; i++ {
		eng := perLang["eng"][i]
		row := make([]string, 0, len(header))
		for _, field := range []string{"mc_answer1", "mc_answer2", "mc_answer3", "mc_answer4", "correct_answer_num"} {
			value, err := eng.String(field)
			if err != nil {
				return nil, fmt.Errorf("belebele row %d: %w", i, err)
			}
			row = append(row, value)
		}
		for _, cfg := range belebeleConfigs {
			passage, err := perLang[cfg.Lang][i].String("flores_passage")
			if err != nil {
				return nil, fmt.Errorf("belebele %s row %d: %w", cfg.Config, i, err)
			}
			question, err := perLang[cfg.Lang][i].String("question")
			if err != nil {
				return nil, fmt.Errorf("belebele %s row %d: %w", cfg.Config, i, err)
			}
			row = append(row, passage, question)
		}
		if err := table.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return table, nil
}
