package model

import "time"

// BankAccount is the bank document persisted after a successful link
// exchange. It is created once and never mutated.
//
// AccessToken is the long-lived aggregation-service credential, stored
// verbatim in the document store. Clear-text storage is a deliberate,
// flagged decision (see DESIGN.md), not an accident.
type BankAccount struct {
	DocumentID       string    `json:"$id"`
	UserID           string    `json:"userId"`
	BankID           string    `json:"bankId"` // aggregation-service item id
	AccountID        string    `json:"accountId"`
	AccessToken      string    `json:"accessToken"`
	FundingSourceURL string    `json:"fundingSourceUrl"`
	ShareableID      string    `json:"sharableId"`
	CreatedAt        time.Time `json:"$createdAt"`
}
