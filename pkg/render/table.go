// Package render writes aligned, whitespace-padded tables for list-style
// output. It knows nothing about the domain: callers hand it rows, an
// ordered column specification and a sort key.
package render

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrInvalidSortField is returned when the sort key is not one of the
	// rendered columns.
	ErrInvalidSortField = errors.New("sort field is not a rendered column")

	// ErrInvalidColumn is returned when a column names a field that is not
	// present in the data.
	ErrInvalidColumn = errors.New("column is not present in the data")
)

// Row is one record to render. Values are strings or ints.
type Row map[string]any

// Column maps a row field to its display heading. Column order determines
// left-to-right output order.
type Column struct {
	Field   string
	Heading string
}

// Table renders rows as an aligned table: a padded header line, a blank
// line, then one padded line per row, sorted ascending by sortKey. Ties
// keep their input order. Zero rows produce zero bytes of output, whatever
// the column and sort configuration.
//
// Rows are assumed homogeneous; the first row stands in for the schema of
// all of them.
func Table(w io.Writer, rows []Row, columns []Column, sortKey string) error {
	if len(rows) == 0 {
		return nil
	}
	if err := validate(rows[0], columns, sortKey); err != nil {
		return err
	}

	sorted := sortRows(rows, sortKey)

	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col.Heading)
	}
	for _, row := range sorted {
		for i, col := range columns {
			if n := len(cellString(row[col.Field])); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var b strings.Builder
	for i, col := range columns {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%-*s", widths[i], col.Heading)
	}
	b.WriteString("\n\n")
	for _, row := range sorted {
		for i, col := range columns {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%-*s", widths[i], cellString(row[col.Field]))
		}
		b.WriteByte('\n')
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("error writing table: %w", err)
	}
	return nil
}

func validate(row Row, columns []Column, sortKey string) error {
	sortKeyRendered := false
	for _, col := range columns {
		if col.Field == sortKey {
			sortKeyRendered = true
		}
	}
	if !sortKeyRendered {
		return fmt.Errorf("%w: %s", ErrInvalidSortField, sortKey)
	}
	for _, col := range columns {
		if _, ok := row[col.Field]; !ok {
			return fmt.Errorf("%w: %s", ErrInvalidColumn, col.Field)
		}
	}
	return nil
}

// sortRows returns a stably sorted copy of rows, ascending by the raw value
// of sortKey. Integer-typed fields order numerically, everything else by
// string value.
func sortRows(rows []Row, sortKey string) []Row {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	if _, numeric := rows[0][sortKey].(int); numeric {
		sort.SliceStable(sorted, func(i, j int) bool {
			a, _ := sorted[i][sortKey].(int)
			b, _ := sorted[j][sortKey].(int)
			return a < b
		})
		return sorted
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return cellString(sorted[i][sortKey]) < cellString(sorted[j][sortKey])
	})
	return sorted
}

func cellString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprint(val)
	}
}
