package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gamingty/storefront/internal/domain"
	"github.com/gamingty/storefront/internal/service"
	"github.com/gamingty/storefront/pkg/middleware"
	"github.com/gamingty/storefront/pkg/validator"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	service *service.WishlistService
	logger  *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(svc *service.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddProductRequest is the JSON request body for saving a product.
type AddProductRequest struct {
	ProductID string `json:"_id" validate:"required"`
	Category  string `json:"category"`
}

// MoveProductRequest is the JSON request body for moving a product between
// categories.
type MoveProductRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

// CategoryRequest is the JSON request body for creating a category.
type CategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// RenameCategoryRequest is the JSON request body for renaming a category.
type RenameCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// productStatus is the response payload for the product lookup endpoint.
type productStatus struct {
	ProductID string `json:"_id"`
	Saved     bool   `json:"saved"`
	Category  string `json:"category,omitempty"`
}

func sessionFromRequest(r *http.Request) service.Session {
	ctx := r.Context()
	return service.Session{
		UserID:   middleware.UserIDFromContext(ctx),
		ClientID: middleware.ClientIDFromContext(ctx),
		Token:    middleware.BearerTokenFromContext(ctx),
	}
}

// --- Handlers ---

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	wl, err := h.service.Get(r.Context(), sessionFromRequest(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: wl})
}

// SyncWishlist handles POST /api/v1/wishlist/sync, forcing a platform refetch.
func (h *WishlistHandler) SyncWishlist(w http.ResponseWriter, r *http.Request) {
	wl, err := h.service.Sync(r.Context(), sessionFromRequest(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: wl})
}

// AddProduct handles POST /api/v1/wishlist/products
func (h *WishlistHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req AddProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	wl, err := h.service.AddProduct(r.Context(), sessionFromRequest(r), domain.WishlistItem{ID: req.ProductID}, req.Category)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: wl})
}

// RemoveProduct handles DELETE /api/v1/wishlist/categories/{category}/products/{productId}
func (h *WishlistHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	productID := chi.URLParam(r, "productId")
	if category == "" || productID == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "category and productId are required"},
		})
		return
	}

	wl, err := h.service.RemoveProduct(r.Context(), sessionFromRequest(r), category, productID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: wl})
}

// MoveProduct handles POST /api/v1/wishlist/products/{productId}/move
func (h *WishlistHandler) MoveProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "productId is required"},
		})
		return
	}

	var req MoveProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	wl, err := h.service.MoveProduct(r.Context(), sessionFromRequest(r), productID, req.From, req.To)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: wl})
}

// GetProductStatus handles GET /api/v1/wishlist/products/{productId}
func (h *WishlistHandler) GetProductStatus(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "productId is required"},
		})
		return
	}

	category, err := h.service.CategoryOf(r.Context(), sessionFromRequest(r), productID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: productStatus{
		ProductID: productID,
		Saved:     category != "",
		Category:  category,
	}})
}

// AddCategory handles POST /api/v1/wishlist/categories
func (h *WishlistHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	wl, err := h.service.AddCategory(r.Context(), sessionFromRequest(r), req.Name)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: wl})
}

// RenameCategory handles PUT /api/v1/wishlist/categories/{category}
func (h *WishlistHandler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if category == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "category is required"},
		})
		return
	}

	var req RenameCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	wl, err := h.service.EditCategory(r.Context(), sessionFromRequest(r), category, req.Name)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: wl})
}

// DeleteCategory handles DELETE /api/v1/wishlist/categories/{category}
func (h *WishlistHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if category == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "category is required"},
		})
		return
	}

	wl, err := h.service.DeleteCategory(r.Context(), sessionFromRequest(r), category)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: wl})
}
