package tenants

import "errors"

var (
	ErrCompanyNotFound   = errors.New("company not found")
	ErrCompanyNameEmpty  = errors.New("company name cannot be empty")
	ErrCompanyHasClients = errors.New("company still owns clients")
	ErrClientNotFound    = errors.New("client not found")
	ErrClientNameEmpty   = errors.New("client name cannot be empty")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrAPIKeyMismatch    = errors.New("api key does not match")
)
