package validator

import (
	"errors"
	"reflect"
	"strings"

	"trendyshop/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// New creates a validator with the shop's custom rules registered.
func New() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	// Decimals are validated through their string form.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	// "notblank" rejects whitespace-only strings.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true
		}
		return strings.TrimSpace(str) != ""
	})

	// "money" accepts non-negative amounts with at most two decimal places
	// that fit the money columns.
	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		d, err := decimal.NewFromString(str)
		if err != nil {
			return false
		}
		return !d.IsNegative() && d.Equal(d.Round(2)) && d.LessThanOrEqual(model.MaxAmount)
	})

	return v
}

// Message converts the first validation failure into a client-facing message.
func Message(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "invalid request"
	}

	fe := ve[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return "invalid request: " + field + " is required"
	case "notblank":
		return "invalid request: " + field + " cannot be blank"
	case "max":
		return "invalid request: " + field + " exceeds maximum length of " + fe.Param()
	case "min":
		return "invalid request: " + field + " is below the minimum of " + fe.Param()
	case "gt", "gte", "lt", "lte":
		return "invalid request: " + field + " is out of range"
	case "money":
		return "invalid request: " + field + " must be a non-negative amount of at most " + model.MaxAmount.String()
	case "email":
		return "invalid request: " + field + " must be a valid email address"
	case "uuid":
		return "invalid request: " + field + " must be a valid id"
	default:
		return "invalid request: " + field + " is invalid"
	}
}
