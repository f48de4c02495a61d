// Package store provides typed access to the profile and bank collections
// held on the identity service's document database. It owns document ids,
// query construction, and the 0-or-1 lookup conventions; durability is the
// remote service's problem.
package store

import (
	"errors"

	"github.com/oklog/ulid/v2"
)

// Store errors.
var (
	ErrUserNotFound = errors.New("user profile not found")
	ErrBankNotFound = errors.New("bank account not found")
)

// newDocumentID mints a sortable client-side document id.
func newDocumentID() string {
	return ulid.Make().String()
}
