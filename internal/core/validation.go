package core

// validation.go checks request payloads before they reach the service.
//
// Field names in messages are the JSON names the client sent, so
// "items[2].description is required" points at the exact input.

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/JonMunkholm/stockmatch/internal/inventory"
	"github.com/go-playground/validator/v10"
)

// MaxMatchItems caps the lines accepted by one match request.
const MaxMatchItems = 1000

// MatchProductsRequest is the body of POST /match-products.
type MatchProductsRequest struct {
	Items []MatchItem `json:"items" validate:"required,min=1,max=1000,dive"`
}

type MatchItem struct {
	Description string `json:"description" validate:"max=2000"`
}

// SaveMappingRequest is the body of POST /save-mapping.
type SaveMappingRequest struct {
	SupplierName string               `json:"supplier_name" validate:"notblank,max=500"`
	ProductID    int64                `json:"product_id" validate:"required,gt=0"`
	SupplierID   inventory.FlexString `json:"supplier_id" validate:"max=255"`
}

// AddStockRequest is the body of POST /add-stock. Line contents are checked
// by the reconciliation itself.
type AddStockRequest struct {
	Items       []inventory.LineItem  `json:"items" validate:"required,min=1"`
	InvoiceInfo inventory.InvoiceInfo `json:"invoiceInfo"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Validate checks req's struct tags. Every failing field is listed in one
// error wrapping inventory.ErrValidation.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", inventory.ErrValidation, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", inventory.ErrValidation, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s long", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %q", field, fe.Tag())
	}
}
