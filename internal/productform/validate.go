package productform

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// ValidationError is the first failing rule of a draft.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// submission is the parsed view of a draft the backend would receive.
// Field order is the order rules are reported in.
type submission struct {
	Name        string   `validate:"required"`
	Price       float64  `validate:"gt=0"`
	Description string   `validate:"required"`
	Categories  []string `validate:"min=1"`
	Stock       int      `validate:"gte=0"`
}

var messages = map[string]string{
	"Name":        "Please enter a product name",
	"Price":       "Price must be greater than 0",
	"Description": "Please enter a product description",
	"Categories":  "Please select at least one category",
	"Stock":       "Stock quantity cannot be negative",
}

func (d *Draft) submission() submission {
	price, err := decimal.NewFromString(strings.TrimSpace(d.Price))
	if err != nil {
		price = decimal.Zero
	}

	stock := 0
	if raw := strings.TrimSpace(d.Stock); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			n = -1
		}
		stock = n
	}

	return submission{
		Name:        strings.TrimSpace(d.Name),
		Price:       price.InexactFloat64(),
		Description: strings.TrimSpace(d.Description),
		Categories:  d.Categories,
		Stock:       stock,
	}
}

// Validate checks the required fields in form order and returns the first
// failure as a *ValidationError.
func (d *Draft) Validate() error {
	err := validate.Struct(d.submission())
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	field := fieldErrs[0].Field()
	return &ValidationError{Field: field, Message: messages[field]}
}
