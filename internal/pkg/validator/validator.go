package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/socialpay/socialpay-api/internal/pkg/password"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Amounts are validated in their canonical string form.
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		if d, ok := v.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	registerCustomValidations()
}

func oneOf(values ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, allowed := range values {
			if v == allowed {
				return true
			}
		}
		return false
	}
}

func registerCustomValidations() {
	validate.RegisterValidation("currency", oneOf("naira", "dollar"))
	validate.RegisterValidation("exchange_type", oneOf("naira_to_dollar", "dollar_to_naira"))
	validate.RegisterValidation("manage_action", oneOf("ban", "unban", "adjust_balance"))

	validate.RegisterValidation("pin", func(fl validator.FieldLevel) bool {
		return password.ValidPIN(fl.Field().String())
	})

	// money: a positive amount with at most two decimal places
	validate.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.IsPositive() && d.Equal(d.Round(2))
	})

	// signed_money: a non-zero amount with at most two decimal places
	validate.RegisterValidation("signed_money", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && !d.IsZero() && d.Equal(d.Round(2))
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	errors := make(map[string]string)
	for _, err := range verrs {
		field := err.Field()
		switch err.Tag() {
		case "required", "required_if":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email format"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "url":
			errors[field] = "Invalid URL format"
		case "uuid":
			errors[field] = "Invalid identifier"
		case "currency":
			errors[field] = "Invalid currency. Must be: naira or dollar"
		case "exchange_type":
			errors[field] = "Invalid exchange type. Must be: naira_to_dollar or dollar_to_naira"
		case "manage_action":
			errors[field] = "Invalid action. Must be: ban, unban, or adjust_balance"
		case "pin":
			errors[field] = "PIN must be exactly 4 digits"
		case "money":
			errors[field] = "Amount must be positive with at most 2 decimal places"
		case "signed_money":
			errors[field] = "Amount must be non-zero with at most 2 decimal places"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}
