// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"github.com/statech108/backend/internal/delivery/http/middleware"
	"github.com/statech108/backend/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AccountHandler      *handler.AccountHandler
	CategoryHandler     *handler.CategoryHandler
	AuthMiddleware      *middleware.AuthMiddleware
	RequestIDMiddleware *middleware.RequestIDMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	accountHandler      *handler.AccountHandler
	categoryHandler     *handler.CategoryHandler
	authMiddleware      *middleware.AuthMiddleware
	requestIDMiddleware *middleware.RequestIDMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		accountHandler:      params.AccountHandler,
		categoryHandler:     params.CategoryHandler,
		authMiddleware:      params.AuthMiddleware,
		requestIDMiddleware: params.RequestIDMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.Use(r.requestIDMiddleware.Process)

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Registration and login, split per principal domain
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/customer/register", r.accountHandler.RegisterCustomer)
		authGroup.POST("/customer/login", r.accountHandler.LoginCustomer)
		authGroup.POST("/merchant/register", r.accountHandler.RegisterMerchant)
		authGroup.POST("/merchant/login", r.accountHandler.LoginMerchant)
	}

	// Public category browsing
	categoryGroup := e.Group("/categories")
	{
		categoryGroup.GET("", r.categoryHandler.ListRoots)
		categoryGroup.GET("/:id/children", r.categoryHandler.ListChildren)
	}

	// Merchant category management: authenticated AND merchant-role gated
	merchantGroup := e.Group("/merchant")
	merchantGroup.Use(r.authMiddleware.Authenticate)
	merchantGroup.Use(r.authMiddleware.RequireMerchant)
	{
		merchantGroup.GET("/categories", r.categoryHandler.ListOwn)
		merchantGroup.POST("/categories", r.categoryHandler.Create)
		merchantGroup.GET("/categories/available-parents", r.categoryHandler.ListAvailableParents)
		merchantGroup.PATCH("/categories/:id", r.categoryHandler.Update)
		merchantGroup.DELETE("/categories/:id", r.categoryHandler.Delete)
	}
}
