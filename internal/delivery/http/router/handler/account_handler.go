// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/statech108/backend/internal/delivery/http/response"
	"github.com/statech108/backend/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AccountHandler holds dependencies for registration and login handlers.
type AccountHandler struct {
	uc     usecase.AccountUsecase
	logger *slog.Logger
}

// NewAccountHandler is the constructor for AccountHandler, injected by Fx.
func NewAccountHandler(uc usecase.AccountUsecase, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		uc:     uc,
		logger: logger,
	}
}

type registerCustomerRequest struct {
	Handle   string `json:"handle" validate:"required"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type loginCustomerRequest struct {
	Handle   string `json:"handle" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerMerchantRequest struct {
	BusinessName string `json:"business_name" validate:"required"`
	Address      string `json:"address" validate:"required"`
	Mobile       string `json:"mobile" validate:"required"`
	Password     string `json:"password" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
}

type loginMerchantRequest struct {
	MerchantUID string `json:"merchant_uid"`
	Mobile      string `json:"mobile"`
	Password    string `json:"password" validate:"required"`
}

// RegisterCustomer handles the customer registration request.
func (h *AccountHandler) RegisterCustomer(c echo.Context) error {
	var req registerCustomerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.RegisterCustomer(c.Request().Context(), &usecase.RegisterCustomerInput{
		Handle:   req.Handle,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output, "Customer registered successfully")
}

// LoginCustomer handles the customer login request.
func (h *AccountHandler) LoginCustomer(c echo.Context) error {
	var req loginCustomerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.LoginCustomer(c.Request().Context(), &usecase.LoginCustomerInput{
		Handle:   req.Handle,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Login successful")
}

// RegisterMerchant handles the merchant registration request.
func (h *AccountHandler) RegisterMerchant(c echo.Context) error {
	var req registerMerchantRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.RegisterMerchant(c.Request().Context(), &usecase.RegisterMerchantInput{
		BusinessName: req.BusinessName,
		Address:      req.Address,
		Mobile:       req.Mobile,
		Password:     req.Password,
		Email:        req.Email,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output, "Merchant registered successfully")
}

// LoginMerchant handles the merchant login request.
func (h *AccountHandler) LoginMerchant(c echo.Context) error {
	var req loginMerchantRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.LoginMerchant(c.Request().Context(), &usecase.LoginMerchantInput{
		MerchantUID: req.MerchantUID,
		Mobile:      req.Mobile,
		Password:    req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Login successful")
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}
