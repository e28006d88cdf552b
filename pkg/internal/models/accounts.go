package models

// Account is the caller identity carried by the auth provider's bearer token.
// It is never persisted here; polls only keep the account id as created_by.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
