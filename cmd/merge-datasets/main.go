// Package main merges per-language run outputs into one combined CSV
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/CodeSwitch-Lab/csw-forge/pkg/dataset"
)

func main() {
	var (
		inputs    = flag.String("inputs", "", "comma-separated run output CSVs to merge")
		keyColumn = flag.String("key-column", "", "shared column used to align rows (positional alignment when empty)")
		output    = flag.String("output", "combined.csv", "path of the merged CSV")
	)
	flag.Parse()

	paths := splitList(*inputs)
	if len(paths) < 2 {
		fmt.Fprintln(os.Stderr, "usage: merge-datasets -inputs a.csv,b.csv[,c.csv...] [-key-column eng_question] -output combined.csv")
		flag.PrintDefaults()
		os.Exit(2)
	}

	base, err := dataset.Load(paths[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", paths[0], err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %s: %d rows, %d columns\n", paths[0], base.NumRows(), base.NumColumns())

	merged := base.Clone()
	added := 0
	for _, path := range paths[1:] {
		table, err := dataset.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("Loaded %s: %d rows, %d columns\n", path, table.NumRows(), table.NumColumns())

		count, err := mergeInto(merged, table, *keyColumn)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to merge %s: %v\n", path, err)
			os.Exit(1)
		}
		added += count
	}

	if err := merged.Save(*output); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", *output, err)
		os.Exit(1)
	}

	fmt.Printf("\nMerged %d files into %s\n", len(paths), *output)
	fmt.Printf("  Rows: %d\n", merged.NumRows())
	fmt.Printf("  Columns: %d (%d added)\n", merged.NumColumns(), added)
	for _, name := range merged.Header {
		if strings.Contains(name, "csw") {
			fmt.Printf("  Generated column: %s\n", name)
		}
	}
}

// mergeInto copies the columns of table that merged does not have yet,
// aligning rows by keyColumn when given. Returns how many columns were
// added.
func mergeInto(merged, table *dataset.Table, keyColumn string) (int, error) {
	// Map each merged row to its row in table
	rowFor := make([]int, merged.NumRows())
	if keyColumn == "" {
		if table.NumRows() != merged.NumRows() {
			return 0, fmt.Errorf("row count mismatch (%d vs %d) and no key column given", table.NumRows(), merged.NumRows())
		}
		for i := range rowFor {
			rowFor[i] = i
		}
	} else {
		keys, err := table.Column(keyColumn)
		if err != nil {
			return 0, err
		}
		index := make(map[string]int, len(keys))
		for i, key := range keys {
			if _, dup := index[key]; !dup {
				index[key] = i
			}
		}
		mergedKeys, err := merged.Column(keyColumn)
		if err != nil {
			return 0, err
		}
		for i, key := range mergedKeys {
			j, ok := index[key]
			if !ok {
				return 0, fmt.Errorf("key %q not found", key)
			}
			rowFor[i] = j
		}
	}

	added := 0
	for _, name := range table.Header {
		if merged.HasColumn(name) {
			continue
		}
		source, err := table.Column(name)
		if err != nil {
			return added, err
		}
		values := make([]string, merged.NumRows())
		for i, j := range rowFor {
			values[i] = source[j]
		}
		if err := merged.AddColumn(name, values); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
