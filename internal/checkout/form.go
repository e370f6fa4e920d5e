// Package checkout implements the simulated checkout: form validation,
// order placement and the timed return to the catalog.
package checkout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIncompleteForm is wrapped by ValidationError.
	ErrIncompleteForm = errors.New("checkout form incomplete")
	// ErrEmptyCart is returned when submitting with nothing in the cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrAlreadyPlaced is returned when a flow is submitted twice.
	ErrAlreadyPlaced = errors.New("order already placed")
)

// Form holds the shipping and payment fields. Only presence is checked;
// no format validation is applied to any field.
type Form struct {
	Email      string
	FirstName  string
	LastName   string
	Address    string
	City       string
	State      string
	ZipCode    string
	CardNumber string
	ExpiryDate string
	CVV        string
}

// Field pairs a form value with its display label.
type Field struct {
	Label string
	Value *string
}

// Fields returns the form's fields in display order.
func (f *Form) Fields() []Field {
	return []Field{
		{Label: "Email", Value: &f.Email},
		{Label: "First Name", Value: &f.FirstName},
		{Label: "Last Name", Value: &f.LastName},
		{Label: "Address", Value: &f.Address},
		{Label: "City", Value: &f.City},
		{Label: "State", Value: &f.State},
		{Label: "ZIP Code", Value: &f.ZipCode},
		{Label: "Card Number", Value: &f.CardNumber},
		{Label: "Expiry Date", Value: &f.ExpiryDate},
		{Label: "CVV", Value: &f.CVV},
	}
}

// Validate reports every field that is empty after trimming whitespace.
func (f Form) Validate() error {
	var missing []string
	for _, field := range f.Fields() {
		if strings.TrimSpace(*field.Value) == "" {
			missing = append(missing, field.Label)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// ValidationError lists the labels of empty required fields.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("please fill in all fields (missing: %s)", strings.Join(e.Missing, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrIncompleteForm
}
