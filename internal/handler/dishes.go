package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/resto-pos/api/internal/database"
	"github.com/shopspring/decimal"
)

// DishStore defines the database methods needed by dish handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type DishStore interface {
	ListDishes(ctx context.Context) ([]database.Dish, error)
	GetDish(ctx context.Context, id uuid.UUID) (database.Dish, error)
	CreateDish(ctx context.Context, arg database.CreateDishParams) (database.Dish, error)
	UpdateDish(ctx context.Context, arg database.UpdateDishParams) (database.Dish, error)
	SetDishStock(ctx context.Context, arg database.SetDishStockParams) (database.Dish, error)
	DeleteDish(ctx context.Context, id uuid.UUID) (int64, error)
}

// DishHandler handles menu CRUD endpoints.
type DishHandler struct {
	store DishStore
}

// NewDishHandler creates a new DishHandler.
func NewDishHandler(store DishStore) *DishHandler {
	return &DishHandler{store: store}
}

// RegisterReadRoutes registers the menu read endpoints (all roles).
func (h *DishHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// RegisterWriteRoutes registers the menu mutation endpoints (kitchen/admin).
func (h *DishHandler) RegisterWriteRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}/stock", h.SetStock)
}

// RegisterAdminRoutes registers the destructive menu endpoints (admin only).
func (h *DishHandler) RegisterAdminRoutes(r chi.Router) {
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type dishRequest struct {
	Name       string `json:"name"`
	UnitPrice  string `json:"unit_price"`
	StockCount int32  `json:"stock_count"`
}

type setStockRequest struct {
	StockCount int32 `json:"stock_count"`
}

type dishResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	UnitPrice  string    `json:"unit_price"`
	StockCount int32     `json:"stock_count"`
	Available  bool      `json:"available"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toDishResponse(d database.Dish) dishResponse {
	resp := dishResponse{
		ID:         d.ID,
		Name:       d.Name,
		StockCount: d.StockCount,
		Available:  d.Available,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}

	// Always format with 2 decimal places for consistent money representation.
	if d.UnitPrice.Valid {
		val, err := d.UnitPrice.Value()
		if err == nil && val != nil {
			dec, err := decimal.NewFromString(val.(string))
			if err == nil {
				resp.UnitPrice = dec.StringFixed(2)
			}
		}
	}
	return resp
}

// --- Helpers ---

var errNegativePrice = errors.New("negative price")

func parsePrice(s string) (pgtype.Numeric, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return pgtype.Numeric{}, err
	}
	if d.IsNegative() {
		return pgtype.Numeric{}, errNegativePrice
	}
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, err
	}
	return n, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func validateDishRequest(req dishRequest) (pgtype.Numeric, string, bool) {
	if req.Name == "" {
		return pgtype.Numeric{}, "name is required", false
	}
	if req.UnitPrice == "" {
		return pgtype.Numeric{}, "unit_price is required", false
	}
	if req.StockCount < 0 {
		return pgtype.Numeric{}, "stock_count must be >= 0", false
	}
	price, err := parsePrice(req.UnitPrice)
	if err != nil {
		if errors.Is(err, errNegativePrice) {
			return pgtype.Numeric{}, "unit_price must be >= 0", false
		}
		return pgtype.Numeric{}, "invalid unit_price", false
	}
	return price, "", true
}

// --- Handlers ---

// List returns the whole menu.
func (h *DishHandler) List(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.store.ListDishes(r.Context())
	if err != nil {
		log.Printf("ERROR: list dishes: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]dishResponse, len(dishes))
	for i, d := range dishes {
		resp[i] = toDishResponse(d)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single dish by ID.
func (h *DishHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid dish ID"})
		return
	}

	dish, err := h.store.GetDish(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "dish not found"})
			return
		}
		log.Printf("ERROR: get dish: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toDishResponse(dish))
}

// Create adds a dish to the menu. Availability follows stock.
func (h *DishHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	price, msg, ok := validateDishRequest(req)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	dish, err := h.store.CreateDish(r.Context(), database.CreateDishParams{
		Name:       req.Name,
		UnitPrice:  price,
		StockCount: req.StockCount,
		Available:  req.StockCount > 0,
	})
	if err != nil {
		log.Printf("ERROR: create dish: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toDishResponse(dish))
}

// Update replaces a dish's name, price and stock. Availability follows stock.
func (h *DishHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid dish ID"})
		return
	}

	var req dishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	price, msg, ok := validateDishRequest(req)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	dish, err := h.store.UpdateDish(r.Context(), database.UpdateDishParams{
		ID:         id,
		Name:       req.Name,
		UnitPrice:  price,
		StockCount: req.StockCount,
		Available:  req.StockCount > 0,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "dish not found"})
			return
		}
		log.Printf("ERROR: update dish: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toDishResponse(dish))
}

// SetStock restocks or depletes a dish. Availability follows stock.
func (h *DishHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid dish ID"})
		return
	}

	var req setStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.StockCount < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "stock_count must be >= 0"})
		return
	}

	dish, err := h.store.SetDishStock(r.Context(), database.SetDishStockParams{
		ID:         id,
		StockCount: req.StockCount,
		Available:  req.StockCount > 0,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "dish not found"})
			return
		}
		log.Printf("ERROR: set dish stock: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toDishResponse(dish))
}

// Delete removes a dish from the menu. Past order lines keep their snapshot
// of the dish name and price.
func (h *DishHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid dish ID"})
		return
	}

	rows, err := h.store.DeleteDish(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: delete dish: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if rows == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "dish not found"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
