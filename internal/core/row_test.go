package core

import (
	"reflect"
	"testing"
)

func TestOrderedColumns(t *testing.T) {
	row := Row{
		ColLocation: "Downtown",
		ColAmount:   "5.45",
		ColID:       "abc",
		ColMealType: "breakfast",
		ColDate:     "2024-01-01",
		ColCategory: "Food",
		ColName:     "Coffee",
	}
	want := []string{ColID, ColName, ColAmount, ColDate, ColCategory, ColMealType, ColLocation}
	if got := OrderedColumns(row); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestOrderedColumnsUnknownSortAfter(t *testing.T) {
	row := Row{"Zebra": "1", ColID: "a", "Extra": "2", ColName: "n"}
	want := []string{ColID, ColName, "Extra", "Zebra"}
	if got := OrderedColumns(row); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestIsBlank(t *testing.T) {
	cases := []struct {
		row   Row
		blank bool
	}{
		{Row{}, true},
		{Row{ColID: "", ColName: "  "}, true},
		{Row{ColID: "", ColName: "Coffee"}, false},
	}
	for i, tc := range cases {
		if got := tc.row.IsBlank(); got != tc.blank {
			t.Fatalf("case %d expected %v, got %v", i, tc.blank, got)
		}
	}
}

func TestApplyPatch(t *testing.T) {
	row := Row{
		ColID:       "abc",
		ColName:     "Coffee",
		ColAmount:   "5.45",
		ColDate:     "2024-01-01",
		ColCategory: "Food",
		ColMealType: "breakfast",
		ColLocation: "Downtown",
	}
	ApplyPatch(row, map[string]string{
		ColAmount:        "99.99",
		ColMealType:      "lunch",
		ColTransportMode: "train", // not a column on this row, must not appear
	})

	if row[ColAmount] != "99.99" {
		t.Fatalf("expected patched amount, got %q", row[ColAmount])
	}
	if row[ColMealType] != "lunch" {
		t.Fatalf("expected patched meal type, got %q", row[ColMealType])
	}
	if row.Has(ColTransportMode) {
		t.Fatalf("patch must not introduce new columns: %v", row)
	}
	if row[ColName] != "Coffee" || row[ColDate] != "2024-01-01" || row[ColCategory] != "Food" {
		t.Fatalf("unpatched columns must be untouched: %v", row)
	}
}

func TestProjectRows(t *testing.T) {
	rows := []Row{
		{ColID: "a", ColName: "First", ColAmount: "1.00", ColDate: "2024-01-01", ColCategory: "Misc"},
		{ColID: "b", ColName: "Second", ColAmount: "2.00", ColDate: "2024-01-02", ColCategory: "Food", ColMealType: "lunch"},
	}
	out := ProjectRows(rows)

	if len(out) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out))
	}
	// First row's column set wins: MealType is dropped from the second row.
	if out[1].Has(ColMealType) {
		t.Fatalf("expected MealType dropped, got %v", out[1])
	}
	if out[1][ColName] != "Second" {
		t.Fatalf("expected values preserved, got %v", out[1])
	}
	// Input must be untouched.
	if !rows[1].Has(ColMealType) {
		t.Fatalf("input rows must not be modified")
	}
}

func TestProjectRowsFillsMissing(t *testing.T) {
	rows := []Row{
		{ColID: "a", ColName: "Food row", ColAmount: "1.00", ColDate: "d", ColCategory: "Food", ColMealType: "lunch", ColLocation: "x"},
		{ColID: "b", ColName: "Base row", ColAmount: "2.00", ColDate: "d", ColCategory: "Misc"},
	}
	out := ProjectRows(rows)
	if !out[1].Has(ColMealType) || out[1][ColMealType] != "" {
		t.Fatalf("expected present-but-empty MealType on projected row, got %v", out[1])
	}
}

func TestRemoveByID(t *testing.T) {
	rows := []Row{
		{ColID: "a", ColName: "one"},
		{ColID: "b", ColName: "two"},
		{ColID: "c", ColName: "three"},
	}

	kept, removed := RemoveByID(rows, "b")
	if removed != 1 || len(kept) != 2 {
		t.Fatalf("expected one removal, got removed=%d kept=%d", removed, len(kept))
	}
	if kept[0][ColID] != "a" || kept[1][ColID] != "c" {
		t.Fatalf("expected order preserved, got %v", kept)
	}

	kept, removed = RemoveByID(rows, "nope")
	if removed != 0 || len(kept) != 3 {
		t.Fatalf("expected no removal, got removed=%d kept=%d", removed, len(kept))
	}
}

func TestPatchByIDFirstMatchOnly(t *testing.T) {
	rows := []Row{
		{ColID: "dup", ColName: "first"},
		{ColID: "dup", ColName: "second"},
	}
	if !PatchByID(rows, "dup", map[string]string{ColName: "patched"}) {
		t.Fatalf("expected a match")
	}
	if rows[0][ColName] != "patched" || rows[1][ColName] != "second" {
		t.Fatalf("only the first match must be patched: %v", rows)
	}
	if PatchByID(rows, "missing", map[string]string{ColName: "x"}) {
		t.Fatalf("expected no match for unknown id")
	}
}
