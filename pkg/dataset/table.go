package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Table represents an in-memory CSV table: an ordered header plus rows of
// string cells. All columns are kept as text; the generation pipeline only
// ever reads and appends text columns.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// NewTable creates an empty table with the given columns
func NewTable(header ...string) *Table {
	return &Table{Header: header}
}

// Load reads a CSV file with a header row into a Table
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty: %s", path)
	}

	table := &Table{
		Header: records[0],
		Rows:   records[1:],
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid CSV %s: %w", path, err)
	}
	return table, nil
}

// Save writes the table to a CSV file, creating parent directories as needed
func (t *Table) Save(path string) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid table: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// Validate checks structural integrity: non-empty unique header names and
// rectangular rows
func (t *Table) Validate() error {
	if len(t.Header) == 0 {
		return fmt.Errorf("table has no columns")
	}
	seen := make(map[string]bool, len(t.Header))
	for _, name := range t.Header {
		if name == "" {
			return fmt.Errorf("table has an empty column name")
		}
		if seen[name] {
			return fmt.Errorf("duplicate column name: %s", name)
		}
		seen[name] = true
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Header) {
			return fmt.Errorf("row %d has %d cells, expected %d", i, len(row), len(t.Header))
		}
	}
	return nil
}

// NumRows returns the number of data rows
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumColumns returns the number of columns
func (t *Table) NumColumns() int {
	return len(t.Header)
}

// ColumnIndex returns the position of a named column
func (t *Table) ColumnIndex(name string) (int, error) {
	for i, col := range t.Header {
		if col == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("column not found: %s", name)
}

// HasColumn reports whether the table contains the named column
func (t *Table) HasColumn(name string) bool {
	_, err := t.ColumnIndex(name)
	return err == nil
}

// Column returns all values of a named column in row order
func (t *Table) Column(name string) ([]string, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// Cell returns the value at a row index and named column
func (t *Table) Cell(row int, column string) (string, error) {
	if row < 0 || row >= len(t.Rows) {
		return "", fmt.Errorf("row index out of range: %d", row)
	}
	idx, err := t.ColumnIndex(column)
	if err != nil {
		return "", err
	}
	return t.Rows[row][idx], nil
}

// AddColumn appends a new column with one value per row
func (t *Table) AddColumn(name string, values []string) error {
	if t.HasColumn(name) {
		return fmt.Errorf("column already exists: %s", name)
	}
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %s has %d values, expected %d", name, len(values), len(t.Rows))
	}
	t.Header = append(t.Header, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], values[i])
	}
	return nil
}

// AppendRow adds a row to the table
func (t *Table) AppendRow(row []string) error {
	if len(row) != len(t.Header) {
		return fmt.Errorf("row has %d cells, expected %d", len(row), len(t.Header))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// DeduplicateBy returns a new table keeping only the first row for each
// distinct value of the given column
func (t *Table) DeduplicateBy(column string) (*Table, error) {
	idx, err := t.ColumnIndex(column)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	out := &Table{Header: append([]string(nil), t.Header...)}
	for _, row := range t.Rows {
		key := row[idx]
		if seen[key] {
			continue
		}
		seen[key] = true
		out.Rows = append(out.Rows, append([]string(nil), row...))
	}
	return out, nil
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	out := &Table{Header: append([]string(nil), t.Header...)}
	for _, row := range t.Rows {
		out.Rows = append(out.Rows, append([]string(nil), row...))
	}
	return out
}

// Head returns a new table with at most n rows
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	out := &Table{Header: append([]string(nil), t.Header...)}
	for _, row := range t.Rows[:n] {
		out.Rows = append(out.Rows, append([]string(nil), row...))
	}
	return out
}

// OutputName derives the conventional run output filename from the input
// path and the name of the generated column:
// datasets/belebele.csv + "csw_arb" -> belebele_with_csw_arb.csv
func OutputName(inputPath, cswColumn string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return fmt.Sprintf("%s_with_%s.csv", base, cswColumn)
}

// OutputPath joins OutputName under the run output directory
func OutputPath(outputDir, inputPath, cswColumn string) string {
	return filepath.Join(outputDir, OutputName(inputPath, cswColumn))
}
