package core

import (
	"sort"
	"strings"
)

// Column names of the persisted row form, in canonical order.
const (
	ColID            = "ID"
	ColName          = "Name"
	ColAmount        = "Amount"
	ColDate          = "Date"
	ColCategory      = "Category"
	ColMealType      = "MealType"
	ColLocation      = "Location"
	ColTransportMode = "TransportMode"
	ColDestination   = "Destination"
)

// columnRank orders the known columns; anything else sorts after, by name.
var columnRank = map[string]int{
	ColID:            0,
	ColName:          1,
	ColAmount:        2,
	ColDate:          3,
	ColCategory:      4,
	ColMealType:      5,
	ColLocation:      6,
	ColTransportMode: 7,
	ColDestination:   8,
}

// BaselineColumns is the header a store writes when reinitializing after a
// read failure.
var BaselineColumns = []string{ColID, ColName, ColAmount, ColDate, ColCategory}

// PatchColumns is the fixed set of update-request fields and the columns they
// may patch. Keys outside this set never reach a row.
var PatchColumns = map[string]string{
	"name":           ColName,
	"amount":         ColAmount,
	"date":           ColDate,
	"category":       ColCategory,
	"meal_type":      ColMealType,
	"location":       ColLocation,
	"transport_mode": ColTransportMode,
	"destination":    ColDestination,
}

// Row is the flat, string-valued, column-named form of one transaction as
// persisted. A column a row never had is absent from the map, which is
// distinct from present-but-empty; readers treat absent columns as "not
// applicable", never as an error.
type Row map[string]string

// Has reports whether the column exists on the row, even with an empty value.
func (r Row) Has(col string) bool {
	_, ok := r[col]
	return ok
}

// IsBlank reports whether every value on the row is empty or whitespace.
// Blank rows are malformed lines, not transactions, and are skipped on load.
func (r Row) IsBlank() bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// OrderedColumns returns the row's columns in canonical order.
func OrderedColumns(r Row) []string {
	cols := make([]string, 0, len(r))
	for c := range r {
		cols = append(cols, c)
	}
	sort.Slice(cols, func(i, j int) bool {
		ri, iKnown := columnRank[cols[i]]
		rj, jKnown := columnRank[cols[j]]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown:
			return true
		case jKnown:
			return false
		default:
			return cols[i] < cols[j]
		}
	})
	return cols
}

// ApplyPatch overwrites row columns from patch. A column is written only when
// the patch supplies it and the row already carries it: a patch can never
// introduce a new column.
func ApplyPatch(r Row, patch map[string]string) {
	for col, v := range patch {
		if r.Has(col) {
			r[col] = v
		}
	}
}

// ProjectRows maps every row onto the column set of the first row, the shape
// a full rewrite persists: columns the first row lacks are dropped, columns a
// later row lacks come back present-but-empty. The input rows are not
// modified.
func ProjectRows(rows []Row) []Row {
	if len(rows) == 0 {
		return nil
	}
	cols := OrderedColumns(rows[0])
	out := make([]Row, len(rows))
	for i, r := range rows {
		p := make(Row, len(cols))
		for _, c := range cols {
			p[c] = r[c]
		}
		out[i] = p
	}
	return out
}

// RemoveByID drops every row whose ID column equals id, preserving order, and
// reports how many rows were dropped. Rows with no ID column never match.
func RemoveByID(rows []Row, id string) ([]Row, int) {
	kept := make([]Row, 0, len(rows))
	removed := 0
	for _, r := range rows {
		if r.Has(ColID) && r[ColID] == id {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	return kept, removed
}

// PatchByID patches the first row whose ID column equals id, in place, and
// reports whether a row matched.
func PatchByID(rows []Row, id string, patch map[string]string) bool {
	for _, r := range rows {
		if r.Has(ColID) && r[ColID] == id {
			ApplyPatch(r, patch)
			return true
		}
	}
	return false
}
