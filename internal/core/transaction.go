package core

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	KindGeneric Kind = "generic"
	KindFood    Kind = "food"
	KindTravel  Kind = "travel"

	CategoryFood   = "Food"
	CategoryTravel = "Travel"
)

type (
	// Kind discriminates the three transaction shapes.
	Kind string

	FoodDetails struct {
		MealType string
		Location string
	}

	TravelDetails struct {
		TransportMode string
		Destination   string
	}

	// Transaction is the in-memory form of one expense. Food and Travel are
	// set only for their respective kinds; everything else shares the base
	// five fields.
	Transaction struct {
		ID       string
		Name     string
		Amount   decimal.Decimal
		Date     string // YYYY-MM-DD, stored as given
		Category string
		Kind     Kind
		Food     *FoodDetails
		Travel   *TravelDetails
	}
)

var (
	ErrMissingName   = errors.New("name is required")
	ErrMissingDate   = errors.New("date is required")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNotFound      = errors.New("transaction not found")
)

// IsValidation reports whether err is a request-level validation failure as
// opposed to an infrastructure error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingName) ||
		errors.Is(err, ErrMissingDate) ||
		errors.Is(err, ErrInvalidAmount)
}

// TitleCategory normalizes a caller-supplied category label. The two reserved
// kinds map to their fixed labels; anything else is title-cased.
func TitleCategory(category string) string {
	switch strings.ToLower(category) {
	case string(KindFood):
		return CategoryFood
	case string(KindTravel):
		return CategoryTravel
	}
	// cases.Caser is stateful, so build one per call.
	return cases.Title(language.English).String(category)
}

// New creates a generic transaction with a fresh ID and the category
// title-cased.
func New(name, amount, date, category string) (Transaction, error) {
	t, err := newBase(name, amount, date, TitleCategory(category))
	if err != nil {
		return Transaction{}, err
	}
	t.Kind = KindGeneric
	return t, nil
}

// NewFood creates a food transaction. The category is always "Food"
// regardless of caller input.
func NewFood(name, amount, date, mealType, location string) (Transaction, error) {
	t, err := newBase(name, amount, date, CategoryFood)
	if err != nil {
		return Transaction{}, err
	}
	t.Kind = KindFood
	t.Food = &FoodDetails{MealType: mealType, Location: location}
	return t, nil
}

// NewTravel creates a travel transaction. The category is always "Travel".
func NewTravel(name, amount, date, transportMode, destination string) (Transaction, error) {
	t, err := newBase(name, amount, date, CategoryTravel)
	if err != nil {
		return Transaction{}, err
	}
	t.Kind = KindTravel
	t.Travel = &TravelDetails{TransportMode: transportMode, Destination: destination}
	return t, nil
}

func newBase(name, amount, date, category string) (Transaction, error) {
	if strings.TrimSpace(name) == "" {
		return Transaction{}, ErrMissingName
	}
	if strings.TrimSpace(date) == "" {
		return Transaction{}, ErrMissingDate
	}
	value, err := ParseAmount(amount)
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{
		ID:       uuid.NewString(),
		Name:     name,
		Amount:   value,
		Date:     date,
		Category: category,
	}, nil
}

// Flatten maps the transaction to its persisted row form. The column set is
// fixed per variant; the amount is rendered at two decimal places.
func (t Transaction) Flatten() Row {
	row := Row{
		ColID:       t.ID,
		ColName:     t.Name,
		ColAmount:   FormatAmount(t.Amount),
		ColDate:     t.Date,
		ColCategory: t.Category,
	}
	switch t.Kind {
	case KindFood:
		var d FoodDetails
		if t.Food != nil {
			d = *t.Food
		}
		row[ColMealType] = d.MealType
		row[ColLocation] = d.Location
	case KindTravel:
		var d TravelDetails
		if t.Travel != nil {
			d = *t.Travel
		}
		row[ColTransportMode] = d.TransportMode
		row[ColDestination] = d.Destination
	}
	return row
}
