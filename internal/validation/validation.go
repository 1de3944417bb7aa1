// Package validation checks request payloads with go-playground/validator
// and turns failures into per-field messages keyed by JSON name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"

	"github.com/hongminglow/fintrack-be/internal/models"
)

// Errors maps JSON field names to a human readable message.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator wraps a configured validator instance. It is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New builds a validator that understands decimals, dates and JSON field names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(models.Date); ok {
			return d.String()
		}
		return nil
	}, models.Date{})
	mustRegister(v, "notblank", validators.NotBlank)
	mustRegister(v, "money", money)
	return &Validator{v: v}
}

// mustRegister panics on a bad tag so a broken rule fails at startup.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// maxMoney bounds amounts to what NUMERIC(14,2) can hold.
var maxMoney = decimal.New(1, 12)

// money accepts amounts with at most two decimal places and an absolute
// value below maxMoney.
func money(fl validator.FieldLevel) bool {
	d, ok := decimalField(fl)
	if !ok {
		return false
	}
	return d.Equal(d.Round(2)) && d.Abs().LessThan(maxMoney)
}

// decimalField recovers the decimal behind fl. The registered custom type
// func hands rules a float64, so the exact value is read from the parent.
func decimalField(fl validator.FieldLevel) (decimal.Decimal, bool) {
	parent := reflect.Indirect(fl.Parent())
	if parent.Kind() == reflect.Struct {
		if f := parent.FieldByName(fl.StructFieldName()); f.IsValid() && f.CanInterface() {
			if d, ok := f.Interface().(decimal.Decimal); ok {
				return d, true
			}
		}
	}
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		return decimal.NewFromFloat(fl.Field().Float()), true
	}
	return decimal.Decimal{}, false
}

// Struct validates s and returns Errors when any rule fails.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := make(Errors, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "oneof":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(fe.Value()))
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	case "money":
		return "Ensure that there are no more than 2 decimal places and no more than 12 digits before the decimal point."
	default:
		return fmt.Sprintf("Failed the %q rule.", fe.Tag())
	}
}
