package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	accthandler "github.com/resto-pos/api/internal/accounting/handler"
	"github.com/resto-pos/api/internal/config"
	"github.com/resto-pos/api/internal/database"
	"github.com/resto-pos/api/internal/enum"
	"github.com/resto-pos/api/internal/handler"
	mw "github.com/resto-pos/api/internal/middleware"
	"github.com/resto-pos/api/internal/service"
	"github.com/resto-pos/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.PublicBaseURL, "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Shared services
	cartService := service.NewCartService(queries)
	orderService := service.NewOrderService(queries, pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	})
	cashService := service.NewCashService(queries, pool, func(db database.DBTX) service.CashStore {
		return database.New(db)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret, queries))

		authHandler.RegisterProtectedRoutes(r)

		// Menu reads are visible to every authenticated caller, tablets
		// included.
		dishHandler := handler.NewDishHandler(queries)
		r.Route("/dishes", func(r chi.Router) {
			dishHandler.RegisterReadRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleKitchen, enum.UserRoleAdmin))
				dishHandler.RegisterWriteRoutes(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleAdmin))
				dishHandler.RegisterAdminRoutes(r)
			})
		})

		// Cart (tablet-scoped; the handler binds every operation to the
		// calling tablet's own cart). Staff and superuser tokens carry no
		// tablet ID, so even callers who pass the role gate cannot reach a
		// cart that isn't theirs.
		cartHandler := handler.NewCartHandler(cartService, orderService, hub)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleTablet))
			r.Route("/cart", cartHandler.RegisterRoutes)
		})

		// Orders
		orderHandler := handler.NewOrderHandler(queries, orderService, hub)
		r.Route("/orders", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleServer, enum.UserRoleKitchen, enum.UserRoleAccountant, enum.UserRoleAdmin))
				orderHandler.RegisterReadRoutes(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleServer))
				orderHandler.RegisterServeRoutes(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleAdmin))
				orderHandler.RegisterAdminRoutes(r)
			})
		})

		// Admin-only table and tablet management
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin))

			tableHandler := handler.NewTableHandler(
				queries,
				pool,
				func(db database.DBTX) handler.TableStore {
					return database.New(db)
				},
				cfg.PublicBaseURL,
			)
			r.Route("/tables", tableHandler.RegisterRoutes)
			r.Get("/tablets", tableHandler.ListTablets)
			r.Post("/tablets/disconnect-all", tableHandler.DisconnectAll)

			userHandler := handler.NewUserHandler(queries)
			r.Route("/users", userHandler.RegisterRoutes)
		})

		// Accounting
		registerHandler := accthandler.NewRegisterHandler(cashService, queries)
		r.Route("/accounting", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleAccountant, enum.UserRoleAdmin))

				dashboardHandler := accthandler.NewDashboardHandler(queries, cashService)
				r.Route("/dashboard", dashboardHandler.RegisterRoutes)

				expenseHandler := accthandler.NewExpenseHandler(cashService)
				r.Route("/expenses", expenseHandler.RegisterRoutes)

				r.Get("/exports/orders.csv", registerHandler.ExportOrdersCSV)
			})

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleAdmin))
				r.Route("/register", registerHandler.RegisterRoutes)
				r.Route("/payments", registerHandler.RegisterPaymentRoutes)
			})
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
