package http

import (
	"encoding/json"
	"strings"
	"testing"

	"spendlog/internal/core"
)

func TestStringOrNumber(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "quoted string", raw: `"5.45"`, want: "5.45"},
		{name: "float", raw: `5.45`, want: "5.45"},
		{name: "integer", raw: `12`, want: "12"},
		{name: "null", raw: `null`, want: ""},
		{name: "plain text", raw: `"hello"`, want: "hello"},
		{name: "object", raw: `{"a":1}`, wantErr: true},
		{name: "array", raw: `[1]`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var v stringOrNumber
			err := json.Unmarshal([]byte(tc.raw), &v)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Unmarshal(%s) = %q, want error", tc.raw, v)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal(%s): %v", tc.raw, err)
			}
			if string(v) != tc.want {
				t.Errorf("Unmarshal(%s) = %q, want %q", tc.raw, v, tc.want)
			}
		})
	}
}

func TestCreateRequestToTransaction(t *testing.T) {
	t.Run("generic category is title-cased", func(t *testing.T) {
		req := createRequest{Category: "groceries", Name: "Milk", Amount: "3.20", Date: "2025-06-01"}
		tx, err := req.toTransaction()
		if err != nil {
			t.Fatalf("toTransaction: %v", err)
		}
		if tx.Kind != core.KindGeneric {
			t.Errorf("kind = %q, want %q", tx.Kind, core.KindGeneric)
		}
		if tx.Category != "Groceries" {
			t.Errorf("category = %q, want Groceries", tx.Category)
		}
	})

	t.Run("food dispatch ignores case and spacing", func(t *testing.T) {
		req := createRequest{Category: "  FOOD  ", Name: "Lunch", Amount: "12.50", Date: "2025-06-01", MealType: "lunch", Location: "Mall"}
		tx, err := req.toTransaction()
		if err != nil {
			t.Fatalf("toTransaction: %v", err)
		}
		if tx.Kind != core.KindFood {
			t.Errorf("kind = %q, want %q", tx.Kind, core.KindFood)
		}
		if tx.Food == nil || tx.Food.MealType != "lunch" || tx.Food.Location != "Mall" {
			t.Errorf("food details = %+v", tx.Food)
		}
	})

	t.Run("travel dispatch", func(t *testing.T) {
		req := createRequest{Category: "travel", Name: "Train", Amount: "45", Date: "2025-06-01", TransportMode: "train", Destination: "Milan"}
		tx, err := req.toTransaction()
		if err != nil {
			t.Fatalf("toTransaction: %v", err)
		}
		if tx.Kind != core.KindTravel {
			t.Errorf("kind = %q, want %q", tx.Kind, core.KindTravel)
		}
		if tx.Travel == nil || tx.Travel.TransportMode != "train" {
			t.Errorf("travel details = %+v", tx.Travel)
		}
	})

	t.Run("missing name fails validation", func(t *testing.T) {
		req := createRequest{Name: "   ", Amount: "5", Date: "2025-06-01"}
		if _, err := req.toTransaction(); err != core.ErrMissingName {
			t.Errorf("err = %v, want ErrMissingName", err)
		}
	})

	t.Run("control characters are stripped", func(t *testing.T) {
		req := createRequest{Name: "Caf\x00e\x07 Roma", Amount: "5", Date: "2025-06-01"}
		tx, err := req.toTransaction()
		if err != nil {
			t.Fatalf("toTransaction: %v", err)
		}
		if tx.Name != "Cafe Roma" {
			t.Errorf("name = %q, want control bytes removed", tx.Name)
		}
	})
}

func TestParsePatch(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    map[string]string
		wantErr bool
	}{
		{
			name: "number amount",
			body: `{"amount": 99.99}`,
			want: map[string]string{core.ColAmount: "99.99"},
		},
		{
			name: "mixed fields",
			body: `{"amount": "12.50", "category": "Travel", "destination": "Rome"}`,
			want: map[string]string{core.ColAmount: "12.50", core.ColCategory: "Travel", core.ColDestination: "Rome"},
		},
		{
			name: "unknown keys dropped",
			body: `{"name": "New", "id": "evil", "unknown": true}`,
			want: map[string]string{core.ColName: "New"},
		},
		{
			name: "null means not supplied",
			body: `{"location": null, "name": "Kept"}`,
			want: map[string]string{core.ColName: "Kept"},
		},
		{
			name: "empty object",
			body: `{}`,
			want: map[string]string{},
		},
		{
			name:    "malformed",
			body:    `{"name": `,
			wantErr: true,
		},
		{
			name:    "structured value rejected",
			body:    `{"amount": {"nested": true}}`,
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			patch, err := parsePatch(strings.NewReader(tc.body))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("parsePatch(%s) = %v, want error", tc.body, patch)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePatch(%s): %v", tc.body, err)
			}
			if len(patch) != len(tc.want) {
				t.Fatalf("patch = %v, want %v", patch, tc.want)
			}
			for col, val := range tc.want {
				if patch[col] != val {
					t.Errorf("patch[%s] = %q, want %q", col, patch[col], val)
				}
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  plain  ", "plain"},
		{"tab\tkept", "tab\tkept"},
		{"strip\x00null", "stripnull"},
		{"bell\x07gone", "bellgone"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := sanitizeInput(tc.in); got != tc.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
