package handler

import (
	"log/slog"
	"net/http"

	"github.com/statech108/backend/internal/delivery/http/middleware"
	"github.com/statech108/backend/internal/delivery/http/response"
	domainerrors "github.com/statech108/backend/internal/domain/errors"
	"github.com/statech108/backend/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CategoryHandler holds dependencies for category hierarchy handlers.
type CategoryHandler struct {
	uc     usecase.CategoryUsecase
	logger *slog.Logger
}

// NewCategoryHandler is the constructor for CategoryHandler, injected by Fx.
func NewCategoryHandler(uc usecase.CategoryUsecase, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		logger: logger,
	}
}

type createCategoryRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description string  `json:"description"`
	Color       string  `json:"color"`
	Icon        string  `json:"icon"`
	SortOrder   int     `json:"sort_order"`
	ImageURL    string  `json:"image_url"`
	ParentID    *string `json:"parent_id"`
}

// updateCategoryRequest is a field-presence patch; absent fields stay untouched.
type updateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
	SortOrder   *int    `json:"sort_order"`
	ImageURL    *string `json:"image_url"`
	ParentID    *string `json:"parent_id"`
}

// ListRoots handles the public root category listing.
func (h *CategoryHandler) ListRoots(c echo.Context) error {
	views, err := h.uc.ListRoots(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, views, "Categories retrieved successfully")
}

// ListChildren handles the public child listing for a node.
func (h *CategoryHandler) ListChildren(c echo.Context) error {
	nodeID, err := parseCategoryID(c)
	if err != nil {
		return err
	}

	output, err := h.uc.ListChildren(c.Request().Context(), nodeID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Categories retrieved successfully")
}

// ListOwn handles the merchant's own category listing.
func (h *CategoryHandler) ListOwn(c echo.Context) error {
	merchantUID, err := merchantUIDFromContext(c)
	if err != nil {
		return err
	}

	views, err := h.uc.ListOwn(c.Request().Context(), merchantUID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, views, "Categories retrieved successfully")
}

// ListAvailableParents handles the listing of valid parent targets.
func (h *CategoryHandler) ListAvailableParents(c echo.Context) error {
	merchantUID, err := merchantUIDFromContext(c)
	if err != nil {
		return err
	}

	tree, err := h.uc.ListAvailableParents(c.Request().Context(), merchantUID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, tree, "Available parents retrieved successfully")
}

// Create handles category creation for the authenticated merchant.
func (h *CategoryHandler) Create(c echo.Context) error {
	merchantUID, err := merchantUIDFromContext(c)
	if err != nil {
		return err
	}

	var req createCategoryRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid category input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	parentID, err := parseOptionalUUID(req.ParentID)
	if err != nil {
		return err
	}

	view, err := h.uc.Create(c.Request().Context(), merchantUID, &usecase.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		SortOrder:   req.SortOrder,
		ImageURL:    req.ImageURL,
		ParentID:    parentID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, view, "Category created successfully")
}

// Update handles a partial category update for the authenticated merchant.
func (h *CategoryHandler) Update(c echo.Context) error {
	merchantUID, err := merchantUIDFromContext(c)
	if err != nil {
		return err
	}

	nodeID, err := parseCategoryID(c)
	if err != nil {
		return err
	}

	var req updateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid category input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	parentID, err := parseOptionalUUID(req.ParentID)
	if err != nil {
		return err
	}

	view, err := h.uc.Update(c.Request().Context(), merchantUID, nodeID, &usecase.UpdateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		SortOrder:   req.SortOrder,
		ImageURL:    req.ImageURL,
		ParentID:    parentID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, view, "Category updated successfully")
}

// Delete handles category deletion for the authenticated merchant.
func (h *CategoryHandler) Delete(c echo.Context) error {
	merchantUID, err := merchantUIDFromContext(c)
	if err != nil {
		return err
	}

	nodeID, err := parseCategoryID(c)
	if err != nil {
		return err
	}

	output, err := h.uc.Delete(c.Request().Context(), merchantUID, nodeID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Category deleted successfully")
}

func parseCategoryID(c echo.Context) (uuid.UUID, error) {
	nodeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, domainerrors.ErrInvalidArgument.WithDetails("category id must be a valid uuid")
	}

	return nodeID, nil
}

func parseOptionalUUID(raw *string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}

	parsed, err := uuid.Parse(*raw)
	if err != nil {
		return nil, domainerrors.ErrInvalidArgument.WithDetails("parent_id must be a valid uuid")
	}

	return &parsed, nil
}

func merchantUIDFromContext(c echo.Context) (string, error) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return "", domainerrors.ErrUnauthenticated
	}
	if claims.MerchantUID == "" {
		return "", domainerrors.ErrNotAMerchant
	}

	return claims.MerchantUID, nil
}
