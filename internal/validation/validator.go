package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ivanoskov/keloladuit/internal/model"
)

// Errors maps a field's json name to a human readable problem
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}

// Validator wraps the go-playground validator with the ledger's rules
type Validator struct {
	validate *validator.Validate
}

var (
	defaultOnce sync.Once
	defaultV    *Validator
)

// Default returns a shared validator. Validators are safe for concurrent use.
func Default() *Validator {
	defaultOnce.Do(func() { defaultV = New() })
	return defaultV
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("tx_type", validateTransactionType)
	_ = v.RegisterValidation("tx_date", validateDate)
	_ = v.RegisterValidation("month_key", validateMonthKey)

	// decimals are validated as numbers so gt/lte apply
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Struct validates s and returns Errors describing every failed field
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = message(fe)
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Kind() == reflect.Bool {
			return "must be accepted"
		}
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		if fe.Param() == "0" {
			return "must not be negative"
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "eqfield":
		return "does not match"
	case "tx_type":
		return "must be income or expense"
	case "tx_date":
		return "must be a date in YYYY-MM-DD form"
	case "month_key":
		return "must be a month in YYYY-MM form"
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func validateTransactionType(fl validator.FieldLevel) bool {
	return model.TransactionType(strings.ToLower(fl.Field().String())).Valid()
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := model.ParseDate(fl.Field().String())
	return err == nil
}

func validateMonthKey(fl validator.FieldLevel) bool {
	return model.ValidMonthKey(fl.Field().String())
}
