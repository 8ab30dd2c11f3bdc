// Package web exposes the ordering and admin operations as a JSON HTTP API.
//
// Every handler is a thin command: decode the request, call one service
// operation, encode the result. Requests for one session are serialized
// with session.Locks so cart changes never interleave.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/roach88/foodsheet/internal/cart"
	"github.com/roach88/foodsheet/internal/catalog"
	"github.com/roach88/foodsheet/internal/imagehost"
	"github.com/roach88/foodsheet/internal/order"
	"github.com/roach88/foodsheet/internal/session"
	"github.com/roach88/foodsheet/internal/telemetry"
)

// maxUploadBytes caps image uploads.
const maxUploadBytes = 10 << 20

// Options wires a Server to its collaborators.
type Options struct {
	Catalog  *catalog.Service
	Orders   *order.Service
	Checkout *cart.Checkout
	Sessions session.Manager

	// Images is optional; without it POST /images answers 503.
	Images imagehost.Uploader

	// ImageDir, when set, is served under /images/.
	ImageDir string

	// StoreConnected is reported by /health.
	StoreConnected bool

	Logger      *slog.Logger
	ServiceName string
}

// Server routes HTTP requests to the services.
type Server struct {
	catalog   *catalog.Service
	orders    *order.Service
	checkout  *cart.Checkout
	sessions  session.Manager
	locks     *session.Locks
	images    imagehost.Uploader
	imageDir  string
	connected bool
	logger    *slog.Logger
	service   string
}

// New creates a Server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	service := opts.ServiceName
	if service == "" {
		service = telemetry.DefaultServiceName
	}
	return &Server{
		catalog:   opts.Catalog,
		orders:    opts.Orders,
		checkout:  opts.Checkout,
		sessions:  opts.Sessions,
		locks:     session.NewLocks(),
		images:    opts.Images,
		imageDir:  opts.ImageDir,
		connected: opts.StoreConnected,
		logger:    logger,
		service:   service,
	}
}

// Handler returns the routed, instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.health)

	// Sessions
	mux.HandleFunc("POST /sessions", s.createSession)
	mux.HandleFunc("GET /sessions/{id}", s.getSession)
	mux.HandleFunc("DELETE /sessions/{id}", s.deleteSession)
	mux.HandleFunc("PUT /sessions/{id}/page", s.setPage)
	mux.HandleFunc("GET /sessions/{id}/cart", s.getCart)
	mux.HandleFunc("PUT /sessions/{id}/cart/{productId}", s.setQuantity)
	mux.HandleFunc("POST /sessions/{id}/orders", s.submitOrder)

	// Products
	mux.HandleFunc("GET /products", s.listProducts)
	mux.HandleFunc("GET /products/{id}", s.getProduct)
	mux.HandleFunc("POST /products", s.addProduct)
	mux.HandleFunc("PUT /products/{id}", s.updateProduct)
	mux.HandleFunc("DELETE /products/{id}", s.removeProduct)

	// Images
	mux.HandleFunc("POST /images", s.uploadImage)
	if s.imageDir != "" {
		mux.Handle("GET /images/", http.StripPrefix("/images/", http.FileServer(http.Dir(s.imageDir))))
	}

	// Orders
	mux.HandleFunc("GET /orders", s.listOrders)
	mux.HandleFunc("GET /orders/{id}", s.getOrder)
	mux.HandleFunc("PUT /orders/{id}/status", s.setOrderStatus)

	traced := telemetry.Middleware(s.service, "/health")(mux)
	return s.logRequests(traced)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	store := "connected"
	if !s.connected {
		store = "not_connected"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "store": store})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		level := slog.LevelInfo
		if rec.status >= 500 {
			level = slog.LevelWarn
		}
		s.logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
