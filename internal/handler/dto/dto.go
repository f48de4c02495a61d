// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/athens-bank/athens/internal/model"
	"github.com/athens-bank/athens/internal/service"
)

// SignUpRequest represents the request body for opening an account.
type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	DateOfBirth string `json:"dateOfBirth"`
	NationalID  string `json:"nationalId"`
}

// Values flattens the request into the field map the form validator takes.
func (r SignUpRequest) Values() map[string]string {
	return map[string]string{
		"email":       r.Email,
		"password":    r.Password,
		"firstName":   r.FirstName,
		"lastName":    r.LastName,
		"address":     r.Address,
		"city":        r.City,
		"state":       r.State,
		"postalCode":  r.PostalCode,
		"dateOfBirth": r.DateOfBirth,
		"nationalId":  r.NationalID,
	}
}

// SignInRequest represents the request body for opening a session.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Values flattens the request into the field map the form validator takes.
func (r SignInRequest) Values() map[string]string {
	return map[string]string{
		"email":    r.Email,
		"password": r.Password,
	}
}

// UserResponse represents the caller's profile in API responses.
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	PostalCode  string    `json:"postalCode"`
	DateOfBirth string    `json:"dateOfBirth"`
	CreatedAt   time.Time `json:"createdAt"`
}

// LinkTokenResponse carries a freshly minted link token.
type LinkTokenResponse struct {
	LinkToken string `json:"linkToken"`
}

// ExchangeRequest represents the request body for completing a bank link.
type ExchangeRequest struct {
	PublicToken string `json:"publicToken"`
}

// BankResponse represents a persisted bank link. The access token never
// appears here.
type BankResponse struct {
	ID               string    `json:"id"`
	BankID           string    `json:"bankId"`
	AccountID        string    `json:"accountId"`
	FundingSourceURL string    `json:"fundingSourceUrl"`
	ShareableID      string    `json:"sharableId"`
	CreatedAt        time.Time `json:"createdAt"`
}

// BankListResponse represents the caller's bank links.
type BankListResponse struct {
	Data []BankResponse `json:"data"`
}

// HomeResponse is the rendered home view: live accounts plus totals.
type HomeResponse struct {
	User           UserResponse            `json:"user"`
	Accounts       []service.LinkedAccount `json:"accounts"`
	TotalBanks     int                     `json:"totalBanks"`
	TotalBalance   string                  `json:"totalCurrentBalance"`
	TotalAvailable string                  `json:"totalAvailableBalance"`
}

// ErrorResponse represents an API error. Fields carries per-field
// validation messages when present.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:          user.AccountID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Address:     user.Address,
		City:        user.City,
		State:       user.State,
		PostalCode:  user.PostalCode,
		DateOfBirth: user.DateOfBirth,
		CreatedAt:   user.CreatedAt,
	}
}

// ToBankResponse converts a BankAccount model to BankResponse DTO.
func ToBankResponse(bank *model.BankAccount) BankResponse {
	return BankResponse{
		ID:               bank.DocumentID,
		BankID:           bank.BankID,
		AccountID:        bank.AccountID,
		FundingSourceURL: bank.FundingSourceURL,
		ShareableID:      bank.ShareableID,
		CreatedAt:        bank.CreatedAt,
	}
}

// ToBankListResponse converts BankAccount models to BankListResponse.
func ToBankListResponse(banks []model.BankAccount) BankListResponse {
	responses := make([]BankResponse, len(banks))
	for i := range banks {
		responses[i] = ToBankResponse(&banks[i])
	}
	return BankListResponse{Data: responses}
}
