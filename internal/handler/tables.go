package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/resto-pos/api/internal/database"
	"github.com/resto-pos/api/internal/enum"
	"github.com/resto-pos/api/internal/qr"
	"github.com/resto-pos/api/internal/service"
	"golang.org/x/crypto/bcrypt"
)

// TableStore defines the database methods needed by table handlers.
type TableStore interface {
	ListTables(ctx context.Context) ([]database.RestaurantTable, error)
	GetTable(ctx context.Context, id uuid.UUID) (database.RestaurantTable, error)
	CreateTable(ctx context.Context, arg database.CreateTableParams) (database.RestaurantTable, error)
	DeleteTable(ctx context.Context, id uuid.UUID) (int64, error)
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	CreateTablet(ctx context.Context, arg database.CreateTabletParams) (database.Tablet, error)
	GetTabletByTable(ctx context.Context, tableID uuid.UUID) (database.Tablet, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) (int64, error)
	SetTabletBlocked(ctx context.Context, arg database.SetTabletBlockedParams) (database.Tablet, error)
	BumpAllTabletSessions(ctx context.Context) (int64, error)
	ListTablets(ctx context.Context) ([]database.ListTabletsRow, error)
}

// NewTableStore creates a TableStore from a DBTX (pool or tx).
type NewTableStore func(db database.DBTX) TableStore

// TableHandler handles table and tablet administration.
type TableHandler struct {
	store    TableStore
	pool     service.TxBeginner
	newStore NewTableStore
	baseURL  string
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(store TableStore, pool service.TxBeginner, newStore NewTableStore, baseURL string) *TableHandler {
	return &TableHandler{store: store, pool: pool, newStore: newStore, baseURL: baseURL}
}

// RegisterRoutes registers table admin endpoints on the given Chi router.
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/block", h.SetBlocked)
	r.Get("/{id}/qr", h.QRCode)
}

// --- Request / Response types ---

type createTableRequest struct {
	TableNumber int32  `json:"table_number"`
	SeatCount   int32  `json:"seat_count"`
	Identifier  string `json:"identifier"`
	Password    string `json:"password"`
}

type setBlockedRequest struct {
	Blocked bool `json:"blocked"`
}

type tableResponse struct {
	ID          uuid.UUID `json:"id"`
	TableNumber int32     `json:"table_number"`
	SeatCount   int32     `json:"seat_count"`
	Occupied    bool      `json:"occupied"`
}

type tabletResponse struct {
	ID             uuid.UUID `json:"id"`
	TableID        uuid.UUID `json:"table_id"`
	Identifier     string    `json:"identifier"`
	Active         bool      `json:"active"`
	Blocked        bool      `json:"blocked"`
	SessionVersion int32     `json:"session_version"`
}

type createTableResponse struct {
	Table  tableResponse  `json:"table"`
	Tablet tabletResponse `json:"tablet"`
}

func toTableResponse(t database.RestaurantTable) tableResponse {
	return tableResponse{ID: t.ID, TableNumber: t.TableNumber, SeatCount: t.SeatCount, Occupied: t.Occupied}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// --- Handlers ---

// List returns every table.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	tables, err := h.store.ListTables(r.Context())
	if err != nil {
		log.Printf("ERROR: list tables: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]tableResponse, len(tables))
	for i, t := range tables {
		resp[i] = toTableResponse(t)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create provisions a table together with its tablet account in one
// transaction: the table row, a TABLET-role user, and the tablet binding.
func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.TableNumber <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "table_number must be positive"})
		return
	}
	if req.SeatCount <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "seat_count must be positive"})
		return
	}
	if len(req.Password) < 8 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password must be at least 8 characters"})
		return
	}

	identifier := req.Identifier
	if identifier == "" {
		identifier = fmt.Sprintf("table-%d", req.TableNumber)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	tx, err := h.pool.Begin(r.Context())
	if err != nil {
		log.Printf("ERROR: begin tx for create table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	defer tx.Rollback(r.Context())

	txStore := h.newStore(tx)

	table, err := txStore.CreateTable(r.Context(), database.CreateTableParams{
		TableNumber: req.TableNumber,
		SeatCount:   req.SeatCount,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "table number already in use"})
			return
		}
		log.Printf("ERROR: create table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	user, err := txStore.CreateUser(r.Context(), database.CreateUserParams{
		Identifier:     identifier,
		HashedPassword: string(hashed),
		Role:           enum.UserRoleTablet,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "identifier already in use"})
			return
		}
		log.Printf("ERROR: create tablet user: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	tablet, err := txStore.CreateTablet(r.Context(), database.CreateTabletParams{
		UserID:  user.ID,
		TableID: table.ID,
	})
	if err != nil {
		log.Printf("ERROR: create tablet: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		log.Printf("ERROR: commit tx for create table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, createTableResponse{
		Table: toTableResponse(table),
		Tablet: tabletResponse{
			ID:             tablet.ID,
			TableID:        tablet.TableID,
			Identifier:     user.Identifier,
			Active:         tablet.Active,
			Blocked:        tablet.Blocked,
			SessionVersion: tablet.SessionVersion,
		},
	})
}

// Delete removes a table together with its tablet account, in one
// transaction. The account delete cascades the tablet row and the tablet's
// cart lines; dropping only the table row would leave the TABLET-role user
// orphaned with its identifier still reserved.
func (h *TableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return
	}

	tx, err := h.pool.Begin(r.Context())
	if err != nil {
		log.Printf("ERROR: begin tx for delete table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	defer tx.Rollback(r.Context())

	txStore := h.newStore(tx)

	tablet, err := txStore.GetTabletByTable(r.Context(), id)
	switch {
	case err == nil:
		if _, err := txStore.DeleteUser(r.Context(), tablet.UserID); err != nil {
			log.Printf("ERROR: delete tablet user: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
	case errors.Is(err, pgx.ErrNoRows):
		// Table without a tablet binding; just drop the table row.
	default:
		log.Printf("ERROR: get tablet for delete: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	rows, err := txStore.DeleteTable(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: delete table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if rows == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		log.Printf("ERROR: commit tx for delete table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetBlocked blocks or unblocks the table's tablet. A blocked tablet cannot
// log in and its existing tokens stop working immediately.
func (h *TableHandler) SetBlocked(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return
	}

	var req setBlockedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	tablet, err := h.store.GetTabletByTable(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table has no tablet"})
			return
		}
		log.Printf("ERROR: get tablet: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	updated, err := h.store.SetTabletBlocked(r.Context(), database.SetTabletBlockedParams{
		ID:      tablet.ID,
		Blocked: req.Blocked,
	})
	if err != nil {
		log.Printf("ERROR: set tablet blocked: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tablet_id": updated.ID,
		"blocked":   updated.Blocked,
	})
}

// QRCode returns the table's provisioning QR code as a PNG. The encoded URL
// carries the tablet identifier only; the password stays out of band.
func (h *TableHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return
	}

	tablet, err := h.store.GetTabletByTable(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table has no tablet"})
			return
		}
		log.Printf("ERROR: get tablet: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	user, err := h.store.GetUserByID(r.Context(), tablet.UserID)
	if err != nil {
		log.Printf("ERROR: get tablet user: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	png, err := qr.PNG(qr.BuildLoginURL(h.baseURL, user.Identifier), 256)
	if err != nil {
		log.Printf("ERROR: render qr: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		log.Printf("ERROR: write qr response: %v", err)
	}
}

// ListTablets returns every tablet with its table number and identifier.
func (h *TableHandler) ListTablets(w http.ResponseWriter, r *http.Request) {
	tablets, err := h.store.ListTablets(r.Context())
	if err != nil {
		log.Printf("ERROR: list tablets: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]tabletResponse, len(tablets))
	for i, t := range tablets {
		resp[i] = tabletResponse{
			ID:             t.ID,
			TableID:        t.TableID,
			Identifier:     t.Identifier,
			Active:         t.Active,
			Blocked:        t.Blocked,
			SessionVersion: t.SessionVersion,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// DisconnectAll bumps every tablet's session version, invalidating all
// outstanding tablet tokens at once.
func (h *TableHandler) DisconnectAll(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.BumpAllTabletSessions(r.Context())
	if err != nil {
		log.Printf("ERROR: bump tablet sessions: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"disconnected": count})
}
