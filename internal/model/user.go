// Package model defines domain entities for the application.
package model

import "time"

// User is the profile document stored on the identity service.
// AccountID is the identity-service account id; DocumentID is the id of the
// profile document itself. The two differ: the account is created first,
// the document only after the payments-network customer exists.
type User struct {
	DocumentID        string    `json:"$id"`
	AccountID         string    `json:"userId"`
	Email             string    `json:"email"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	Address           string    `json:"address"`
	City              string    `json:"city"`
	State             string    `json:"state"`
	PostalCode        string    `json:"postalCode"`
	DateOfBirth       string    `json:"dateOfBirth"`
	NationalID        string    `json:"nationalId"`
	DwollaCustomerID  string    `json:"dwollaCustomerId"`
	DwollaCustomerURL string    `json:"dwollaCustomerUrl"`
	CreatedAt         time.Time `json:"$createdAt"`
}

// FullName returns the display name used for the identity account
// and the link-token request.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
