package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/resto-pos/api/internal/database"
	"github.com/resto-pos/api/internal/middleware"
	"github.com/resto-pos/api/internal/service"
	"github.com/resto-pos/api/internal/ws"
)

type CartHandler struct {
	cart   *service.CartService
	orders *service.OrderService
	hub    *ws.Hub
}

func NewCartHandler(cart *service.CartService, orders *service.OrderService, hub *ws.Hub) *CartHandler {
	return &CartHandler{cart: cart, orders: orders, hub: hub}
}

func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Contents)
	r.Post("/items", h.AddItem)
	r.Patch("/items/{id}", h.SetQuantity)
	r.Delete("/items/{id}", h.RemoveItem)
	r.Post("/validate", h.Validate)
}

type addCartItemRequest struct {
	DishID   uuid.UUID `json:"dish_id"`
	Quantity int32     `json:"quantity"`
}

type setCartQuantityRequest struct {
	Quantity int32 `json:"quantity"`
}

type cartLineResponse struct {
	ID        uuid.UUID `json:"id"`
	DishID    uuid.UUID `json:"dish_id"`
	Name      string    `json:"name"`
	UnitPrice string    `json:"unit_price"`
	Quantity  int32     `json:"quantity"`
	LineTotal string    `json:"line_total"`
}

type cartResponse struct {
	Items []cartLineResponse `json:"items"`
	Total string             `json:"total"`
}

// tabletFromContext resolves the calling tablet's ID from the JWT claims.
// Staff tokens have no tablet binding and cannot touch carts.
func tabletFromContext(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return uuid.Nil, false
	}
	if claims.TabletID == nil {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "tablet session required"})
		return uuid.Nil, false
	}
	return *claims.TabletID, true
}

func (h *CartHandler) Contents(w http.ResponseWriter, r *http.Request) {
	tabletID, ok := tabletFromContext(w, r)
	if !ok {
		return
	}

	rows, total, err := h.cart.Contents(r.Context(), tabletID)
	if err != nil {
		log.Printf("ERROR: failed to load cart: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := cartResponse{Items: make([]cartLineResponse, 0, len(rows)), Total: total.StringFixed(2)}
	for _, row := range rows {
		resp.Items = append(resp.Items, toCartLineResponse(row))
	}
	writeJSON(w, http.StatusOK, resp)
}

func toCartLineResponse(row database.ListCartItemsByTabletRow) cartLineResponse {
	unit := formatMoney(row.UnitPrice)
	line := "0.00"
	if d, err := decimal.NewFromString(unit); err == nil {
		line = d.Mul(decimal.NewFromInt32(row.Quantity)).StringFixed(2)
	}
	return cartLineResponse{
		ID:        row.ID,
		DishID:    row.DishID,
		Name:      row.Name,
		UnitPrice: unit,
		Quantity:  row.Quantity,
		LineTotal: line,
	}
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	tabletID, ok := tabletFromContext(w, r)
	if !ok {
		return
	}

	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.DishID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "dish_id is required"})
		return
	}

	item, err := h.cart.AddItem(r.Context(), tabletID, req.DishID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTabletNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "tablet not found"})
		case errors.Is(err, service.ErrDishNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "dish not found"})
		case errors.Is(err, service.ErrOutOfStock):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "dish is out of stock"})
		default:
			log.Printf("ERROR: failed to add cart item: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":       item.ID,
		"dish_id":  item.DishID,
		"quantity": item.Quantity,
	})
}

func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	tabletID, ok := tabletFromContext(w, r)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cart item ID"})
		return
	}

	var req setCartQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	item, removed, err := h.cart.SetQuantity(r.Context(), tabletID, itemID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartLineNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "cart item not found"})
		case errors.Is(err, service.ErrDishNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "dish not found"})
		default:
			log.Printf("ERROR: failed to update cart item: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	if removed {
		writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":       item.ID,
		"dish_id":  item.DishID,
		"quantity": item.Quantity,
	})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	tabletID, ok := tabletFromContext(w, r)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cart item ID"})
		return
	}

	if err := h.cart.RemoveItem(r.Context(), tabletID, itemID); err != nil {
		if errors.Is(err, service.ErrCartLineNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "cart item not found"})
			return
		}
		log.Printf("ERROR: failed to remove cart item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) Validate(w http.ResponseWriter, r *http.Request) {
	tabletID, ok := tabletFromContext(w, r)
	if !ok {
		return
	}

	result, err := h.orders.ValidateCart(r.Context(), tabletID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTabletNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "tablet not found"})
		case errors.Is(err, service.ErrCartEmpty):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "cart is empty"})
		default:
			log.Printf("ERROR: failed to validate cart: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp := toOrderResponse(result.Order)
	resp.Items = toOrderLineResponses(result.Items)
	h.hub.Broadcast(ws.EventOrderCreated, resp)
	writeJSON(w, http.StatusCreated, resp)
}
