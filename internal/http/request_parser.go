package http

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"spendlog/internal/core"
)

// stringOrNumber accepts a JSON string or number and keeps the literal text,
// so "5.45" and 5.45 parse to the same value. JSON null reads as empty.
type stringOrNumber string

func (v *stringOrNumber) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = stringOrNumber(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = stringOrNumber(n.String())
	return nil
}

// createRequest is the POST /api/transactions body.
type createRequest struct {
	Category      string         `json:"category"`
	Name          string         `json:"name"`
	Amount        stringOrNumber `json:"amount"`
	Date          string         `json:"date"`
	MealType      string         `json:"meal_type"`
	Location      string         `json:"location"`
	TransportMode string         `json:"transport_mode"`
	Destination   string         `json:"destination"`
}

// toTransaction dispatches on the lowered category: food and travel build
// their variants, anything else builds a generic transaction with the
// category title-cased.
func (req createRequest) toTransaction() (core.Transaction, error) {
	name := sanitizeInput(req.Name)
	amount := strings.TrimSpace(string(req.Amount))
	date := sanitizeInput(req.Date)

	switch strings.ToLower(strings.TrimSpace(req.Category)) {
	case string(core.KindFood):
		return core.NewFood(name, amount, date, sanitizeInput(req.MealType), sanitizeInput(req.Location))
	case string(core.KindTravel):
		return core.NewTravel(name, amount, date, sanitizeInput(req.TransportMode), sanitizeInput(req.Destination))
	}
	return core.New(name, amount, date, sanitizeInput(req.Category))
}

// parsePatch reads a PUT body into a column-keyed patch. Only the fixed
// update fields pass through (core.PatchColumns); unknown keys are dropped
// and a null value counts as not supplied.
func parsePatch(r io.Reader) (map[string]string, error) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode patch: %w", err)
	}

	patch := make(map[string]string)
	for key, raw := range fields {
		col, ok := core.PatchColumns[key]
		if !ok {
			continue
		}
		if string(raw) == "null" {
			continue
		}
		var value stringOrNumber
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		patch[col] = sanitizeInput(string(value))
	}
	return patch, nil
}
