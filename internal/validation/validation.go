// Package validation holds the input format rules shared by the user and auth endpoints.
package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^[\+]?[0-9\s\-\(\)]{10,15}$`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s\-']+$`)
)

// ValidEmail reports whether email has a local@domain.tld shape with a 2+ letter TLD.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidPhone accepts an optional leading '+' followed by 10-15 digits, spaces, hyphens or parentheses.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidName accepts one or more letters, spaces, hyphens or apostrophes.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Validator tags backed by the predicates above.
const (
	TagEmail = "portal_email"
	TagPhone = "portal_phone"
	TagName  = "portal_name"
)

// Register installs the portal tags on v.
func Register(v *validator.Validate) error {
	rules := map[string]func(string) bool{
		TagEmail: ValidEmail,
		TagPhone: ValidPhone,
		TagName:  ValidName,
	}
	for tag, fn := range rules {
		fn := fn
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		}); err != nil {
			return err
		}
	}
	return nil
}

// New returns a validator with the portal tags registered.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := Register(v); err != nil {
		// tags are static; failure here is a programming error
		panic(err)
	}
	return v
}

// FirstFailure returns the struct field name and tag of the first failed rule in err,
// or ok=false when err is not a validation error.
func FirstFailure(err error) (field, tag string, ok bool) {
	verrs, isValidation := err.(validator.ValidationErrors)
	if !isValidation || len(verrs) == 0 {
		return "", "", false
	}
	return verrs[0].StructField(), verrs[0].Tag(), true
}

// HasTag reports whether any rule named tag failed in err.
func HasTag(err error, tag string) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	for _, fe := range verrs {
		if fe.Tag() == tag {
			return true
		}
	}
	return false
}
