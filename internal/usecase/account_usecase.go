// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"
)

// --- Input DTOs ---

// RegisterCustomerInput defines the data required to register a new customer.
type RegisterCustomerInput struct {
	Handle   string
	Password string
	Email    string
}

// LoginCustomerInput defines the data required for a customer to log in.
type LoginCustomerInput struct {
	Handle   string
	Password string
}

// RegisterMerchantInput defines the data required to register a new merchant.
type RegisterMerchantInput struct {
	BusinessName string
	Address      string
	Mobile       string
	Password     string
	Email        string
}

// LoginMerchantInput defines the data required for a merchant to log in.
// Exactly one of MerchantUID or Mobile must be supplied.
type LoginMerchantInput struct {
	MerchantUID string
	Mobile      string
	Password    string
}

// --- Output DTOs ---

// Identity is the public identity returned alongside an issued credential.
type Identity struct {
	ID          string `json:"id"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
	MerchantUID string `json:"merchant_uid,omitempty"`
	Email       string `json:"email,omitempty"`
}

// AuthOutput is the result of a successful registration or login.
// RefreshToken is carried for wire compatibility but is always empty;
// no refresh flow exists and an expired token requires a new login.
type AuthOutput struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	Identity     Identity  `json:"identity"`
}

// AccountUsecase defines the interface for principal registration and login.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AccountUsecase interface {
	RegisterCustomer(ctx context.Context, input *RegisterCustomerInput) (*AuthOutput, error)
	LoginCustomer(ctx context.Context, input *LoginCustomerInput) (*AuthOutput, error)
	RegisterMerchant(ctx context.Context, input *RegisterMerchantInput) (*AuthOutput, error)
	LoginMerchant(ctx context.Context, input *LoginMerchantInput) (*AuthOutput, error)
}
