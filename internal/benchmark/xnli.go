package benchmark

import (
	"context"
	"fmt"

	"github.com/CodeSwitch-Lab/csw-forge/pkg/dataset"
)

// xnliLanguages maps XNLI language codes to output column prefixes
var xnliLanguages = []struct {
	Code string
	Lang string
}{
	{"en", "eng"},
	{"fr", "fra"},
	{"de", "deu"},
	{"ar", "arb"},
	{"zh", "zho"},
}

// PrepareXNLI extracts per-language premise and hypothesis pairs from the
// all_languages config of facebook/xnli.
func (c *Client) PrepareXNLI(ctx context.Context) (*dataset.Table, error) {
	rows, err := c.FetchRows(ctx, "facebook/xnli", "all_languages", "test")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch xnli: %w", err)
	}

	header := []string{"label"}
	for _, lang := range xnliLanguages {
		header = append(header, lang.Lang+"_premise", lang.Lang+"_hypothesis")
	}
	table := dataset.NewTable(header...)

	for i, row := range rows {
		label, err := row.String("label")
		if err != nil {
			return nil, fmt.Errorf("xnli row %d: %w", i, err)
		}

		premises, err := translationMap(row["premise"])
		if err != nil {
			return nil, fmt.Errorf("xnli row %d premise: %w", i, err)
		}
		hypotheses, err := translationMap(row["hypothesis"])
		if err != nil {
			return nil, fmt.Errorf("xnli row %d hypothesis: %w", i, err)
		}

		out := []string{label}
		for _, lang := range xnliLanguages {
			out = append(out, premises[lang.Code], hypotheses[lang.Code])
		}
		if err := table.AppendRow(out); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// translationMap normalizes the two shapes XNLI uses for multilingual
// fields: a plain language-to-text object, or parallel "language" and
// "translation" arrays.
func translationMap(value interface{}) (map[string]string, error) {
	obj, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected object, got %T", value)
	}

	langsRaw, hasLangs := obj["language"]
	transRaw, hasTrans := obj["translation"]
	if hasLangs && hasTrans {
		langs, ok := langsRaw.([]interface{})
		if !ok {
			return nil, fmt.Errorf("language field is not an array")
		}
		trans, ok := transRaw.([]interface{})
		if !ok {
			return nil, fmt.Errorf("translation field is not an array")
		}
		if len(langs) != len(trans) {
			return nil, fmt.Errorf("got %d languages for %d translations", len(langs), len(trans))
		}
		result := make(map[string]string, len(langs))
		for i := range langs {
			code, _ := langs[i].(string)
			text, _ := trans[i].(string)
			result[code] = text
		}
		return result, nil
	}

	result := make(map[string]string, len(obj))
	for code, text := range obj {
		str, ok := text.(string)
		if !ok {
			return nil, fmt.Errorf("translation for %q is not text", code)
		}
		result[code] = str
	}
	return result, nil
}
