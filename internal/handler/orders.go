package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/resto-pos/api/internal/database"
	"github.com/resto-pos/api/internal/export"
	"github.com/resto-pos/api/internal/middleware"
	"github.com/resto-pos/api/internal/service"
	"github.com/resto-pos/api/internal/ws"
)

// OrderQueryStore covers the read side of the order endpoints; state changes
// go through OrderService.
type OrderQueryStore interface {
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.ListOrdersRow, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetOrderWithTable(ctx context.Context, id uuid.UUID) (database.GetOrderWithTableRow, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
}

type OrderHandler struct {
	store  OrderQueryStore
	orders *service.OrderService
	hub    *ws.Hub
}

func NewOrderHandler(store OrderQueryStore, orders *service.OrderService, hub *ws.Hub) *OrderHandler {
	return &OrderHandler{store: store, orders: orders, hub: hub}
}

// RegisterReadRoutes mounts the staff-visible order reads.
func (h *OrderHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/receipt", h.Receipt)
}

// RegisterServeRoutes mounts the lifecycle transitions for serving staff.
func (h *OrderHandler) RegisterServeRoutes(r chi.Router) {
	r.Post("/{id}/serve", h.Serve)
	r.Post("/{id}/pay", h.Pay)
}

// RegisterAdminRoutes mounts the admin-only order deletion.
func (h *OrderHandler) RegisterAdminRoutes(r chi.Router) {
	r.Delete("/{id}", h.Delete)
}

type orderLineResponse struct {
	ID        uuid.UUID `json:"id"`
	DishID    *string   `json:"dish_id"`
	DishName  string    `json:"dish_name"`
	Quantity  int32     `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
}

type orderResponse struct {
	ID          uuid.UUID           `json:"id"`
	TabletID    uuid.UUID           `json:"tablet_id"`
	TableNumber int32               `json:"table_number,omitempty"`
	Total       string              `json:"total"`
	Status      string              `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	Items       []orderLineResponse `json:"items,omitempty"`
}

// formatMoney renders a numeric as a fixed two-decimal string, falling back
// to "0.00" for null or unparseable values.
func formatMoney(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

func toOrderResponse(o database.Order) orderResponse {
	return orderResponse{
		ID:        o.ID,
		TabletID:  o.TabletID,
		Total:     formatMoney(o.Total),
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
	}
}

func toOrderLineResponses(items []database.OrderItem) []orderLineResponse {
	lines := make([]orderLineResponse, 0, len(items))
	for _, item := range items {
		line := orderLineResponse{
			ID:        item.ID,
			DishName:  item.DishName,
			Quantity:  item.Quantity,
			UnitPrice: formatMoney(item.UnitPrice),
		}
		if item.DishID.Valid {
			id := uuid.UUID(item.DishID.Bytes).String()
			line.DishID = &id
		}
		lines = append(lines, line)
	}
	return lines
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	params := database.ListOrdersParams{Limit: 100, Offset: 0}

	if s := r.URL.Query().Get("status"); s != "" {
		status := database.OrderStatus(s)
		if status != database.OrderStatusPENDING &&
			status != database.OrderStatusSERVED &&
			status != database.OrderStatusPAID {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status filter"})
			return
		}
		params.Status = database.NullOrderStatus{OrderStatus: status, Valid: true}
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 500 {
			params.Limit = int32(n)
		}
	}
	if s := r.URL.Query().Get("offset"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			params.Offset = int32(n)
		}
	}

	rows, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: failed to list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, orderResponse{
			ID:          row.ID,
			TabletID:    row.TabletID,
			TableNumber: row.TableNumber,
			Total:       formatMoney(row.Total),
			Status:      string(row.Status),
			CreatedAt:   row.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: failed to get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: failed to list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderResponse(order)
	resp.Items = toOrderLineResponses(items)
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) Serve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	order, err := h.orders.MarkServed(r.Context(), id, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.Is(err, service.ErrInvalidTransition):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order is not pending"})
		default:
			log.Printf("ERROR: failed to mark order served: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp := toOrderResponse(order)
	h.hub.Broadcast(ws.EventOrderServed, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	result, err := h.orders.RecordPayment(r.Context(), id, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.Is(err, service.ErrAlreadyPaid):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order already paid"})
		case errors.Is(err, service.ErrInvalidTransition):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order is not served"})
		default:
			log.Printf("ERROR: failed to record payment: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp := toOrderResponse(result.Order)
	h.hub.Broadcast(ws.EventOrderPaid, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	if err := h.orders.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: failed to delete order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrderWithTable(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: failed to get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: failed to list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(export.Receipt(order, items))); err != nil {
		log.Printf("ERROR: failed to write receipt: %v", err)
	}
}
