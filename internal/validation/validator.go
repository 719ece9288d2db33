package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"crowdfund-platform/internal/models"
)

var upiPattern = regexp.MustCompile(`^[\w.\-]{3,}@[a-zA-Z]{3,}$`)

// Validator evaluates the field tables. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// New builds a Validator. now is consulted by the "future" rule.
func New(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	v := &Validator{validate: validator.New(validator.WithRequiredStructEnabled()), now: now}

	v.mustRegister("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	})
	v.mustRegister("upi", func(fl validator.FieldLevel) bool {
		return upiPattern.MatchString(fl.Field().String())
	})
	v.mustRegister("future", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && t.After(v.now())
	})
	v.mustRegister("doctypes", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.Slice {
			return false
		}
		for i := 0; i < field.Len(); i++ {
			doc, ok := field.Index(i).Interface().(models.Document)
			if !ok || !doc.Type.Valid() || strings.TrimSpace(doc.URL) == "" {
				return false
			}
		}
		return true
	})
	return v
}

func (v *Validator) mustRegister(tag string, fn validator.Func) {
	if err := v.validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// Fundraiser checks every field of the creation form with the server rules.
func (v *Validator) Fundraiser(in models.FundraiserInput, docs []models.Document) error {
	return v.check(FundraiserFields, fundraiserValues(in, docs), false, "")
}

// FundraiserStep checks only the fields shown on one wizard step.
func (v *Validator) FundraiserStep(step Step, in models.FundraiserInput, docs []models.Document) error {
	if !step.Valid() {
		return models.NewValidationError("step", fmt.Sprintf("unknown wizard step %q", step))
	}
	return v.check(FundraiserFields, fundraiserValues(in, docs), true, step)
}

func (v *Validator) Signup(in models.SignupInput) error {
	return v.check(SignupFields, signupValues(in), false, "")
}

func (v *Validator) Donation(amount int64, comment string) error {
	return v.check(DonationFields, map[string]any{"amount": amount, "comment": comment}, false, "")
}

// Category accepts an empty filter or a known category.
func (v *Validator) Category(category string) error {
	if category == "" || models.Category(category).Valid() {
		return nil
	}
	return models.NewValidationError("category", fmt.Sprintf("%s is not a supported category", category))
}

func (v *Validator) check(fields []Field, values map[string]any, wizard bool, step Step) error {
	problems := map[string]string{}
	for _, f := range fields {
		if step != "" && f.Step != step {
			continue
		}
		rules := f.Rules
		if wizard && f.WizardRules != "" {
			rules = f.WizardRules
		}

		err := v.validate.Var(values[f.Name], rules)
		if err == nil {
			continue
		}
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return fmt.Errorf("validate %s: %w", f.Name, err)
		}
		problems[f.Name] = message(f, fieldErrs[0])
	}
	if len(problems) > 0 {
		return &models.ValidationError{Fields: problems}
	}
	return nil
}

func label(f Field) string {
	if f.Label != "" {
		return f.Label
	}
	return cases.Title(language.English).String(strings.ReplaceAll(f.Name, "_", " "))
}

func message(f Field, fe validator.FieldError) string {
	name := label(f)
	isText := fe.Kind() == reflect.String
	isList := fe.Kind() == reflect.Slice

	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "max":
		if isText {
			return fmt.Sprintf("%s cannot exceed %s characters", name, fe.Param())
		}
		if isList {
			return fmt.Sprintf("%s cannot contain more than %s items", name, fe.Param())
		}
		return fmt.Sprintf("%s cannot exceed %s", name, fe.Param())
	case "min":
		if isText {
			return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
		}
		if isList {
			return fmt.Sprintf("Please upload at least %s supporting document", fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s digits", name, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, fe.Param())
	case "number":
		return name + " must contain only digits"
	case "email":
		return "Please enter a valid email"
	case "category":
		return fmt.Sprintf("%v is not a supported category", fe.Value())
	case "upi":
		return "Please enter a valid UPI ID"
	case "future":
		return name + " must be in the future"
	case "doctypes":
		return "Every document needs a url and a type of identity, medical, legal or other"
	}
	return fmt.Sprintf("%s failed the %s rule", name, fe.Tag())
}
