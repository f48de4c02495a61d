// Package forms maps an auth mode to the field schema the UI renders and
// validates submitted values against it. Pure functions, no side effects.
package forms

import (
	"fmt"
	"regexp"
	"time"
)

// Mode selects which auth form is being rendered or validated.
type Mode string

const (
	ModeSignIn Mode = "sign-in"
	ModeSignUp Mode = "sign-up"
)

// IsValid reports whether the mode is one of the known form modes.
func (m Mode) IsValid() bool {
	return m == ModeSignIn || m == ModeSignUp
}

// FieldKind hints the input widget and validation rule for a field.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindEmail    FieldKind = "email"
	KindPassword FieldKind = "password"
	KindDate     FieldKind = "date"
)

// Field describes a single form field.
type Field struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Kind        FieldKind `json:"kind"`
	Placeholder string    `json:"placeholder,omitempty"`
	Required    bool      `json:"required"`
}

const minPasswordLength = 8

var (
	emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

	signInFields = []Field{
		{Name: "email", Label: "Email", Kind: KindEmail, Placeholder: "Enter your email", Required: true},
		{Name: "password", Label: "Password", Kind: KindPassword, Placeholder: "Enter your password", Required: true},
	}

	signUpFields = []Field{
		{Name: "firstName", Label: "First Name", Kind: KindText, Placeholder: "ex: John", Required: true},
		{Name: "lastName", Label: "Last Name", Kind: KindText, Placeholder: "ex: Doe", Required: true},
		{Name: "address", Label: "Address", Kind: KindText, Placeholder: "Enter your address", Required: true},
		{Name: "city", Label: "City", Kind: KindText, Placeholder: "Enter your city", Required: true},
		{Name: "state", Label: "State", Kind: KindText, Placeholder: "ex: NY", Required: true},
		{Name: "postalCode", Label: "Postal Code", Kind: KindText, Placeholder: "ex: 400001", Required: true},
		{Name: "dateOfBirth", Label: "Date of Birth", Kind: KindDate, Placeholder: "yyyy-mm-dd", Required: true},
		{Name: "nationalId", Label: "National ID", Kind: KindText, Placeholder: "XXXX-XXXX-XXXX", Required: true},
	}
)

// Schema returns the ordered field list for the given mode. Sign-up extends
// the sign-in fields with the profile fields required to create a
// payments-network customer. Unknown modes fall back to the sign-in schema.
func Schema(mode Mode) []Field {
	fields := make([]Field, 0, len(signInFields)+len(signUpFields))
	if mode == ModeSignUp {
		fields = append(fields, signUpFields...)
	}
	fields = append(fields, signInFields...)
	return fields
}

// Validate checks submitted values against the schema for mode and returns
// field-name → message for every violation. An empty map means valid.
func Validate(mode Mode, values map[string]string) map[string]string {
	errs := make(map[string]string)

	for _, f := range Schema(mode) {
		v := values[f.Name]
		if v == "" {
			if f.Required {
				errs[f.Name] = f.Label + " is required"
			}
			continue
		}

		switch f.Kind {
		case KindEmail:
			if !emailRegex.MatchString(v) {
				errs[f.Name] = "Enter a valid email address"
			}
		case KindPassword:
			if len(v) < minPasswordLength {
				errs[f.Name] = fmt.Sprintf("Password must be at least %d characters", minPasswordLength)
			}
		case KindDate:
			if _, err := time.Parse("2006-01-02", v); err != nil {
				errs[f.Name] = f.Label + " must be yyyy-mm-dd"
			}
		}
	}

	return errs
}
