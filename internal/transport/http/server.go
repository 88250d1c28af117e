// Package http provides the REST transport for the booking API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mvaleed/innkeep/internal/booking"
	"github.com/mvaleed/innkeep/internal/domain"
)

// Metrics observes served requests and exposes the scrape endpoint.
type Metrics interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
	Handler() http.Handler
}

// Server is the HTTP server for the booking API.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	services   Services
	metrics    Metrics
	logger     *slog.Logger
}

// NewServer creates a new HTTP server. metrics may be nil.
func NewServer(services Services, metrics Metrics, logger *slog.Logger) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		services: services,
		metrics:  metrics,
		logger:   logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/refresh", s.handleRefreshToken)

		r.Get("/hotels", s.handleListHotels)
		r.Get("/hotels/search/{location}", s.handleSearchHotels)
		r.Get("/hotels/{id}", s.handleGetHotel)
		r.Get("/hotels/{id}/reviews", s.handleListHotelReviews)

		r.Get("/reviews", s.handleListReviews)
		r.Get("/reviews/{id}", s.handleGetReview)
		r.Get("/reviews/hotel/{hotelId}", s.handleListHotelReviews)
		r.Get("/reviews/user/{userId}", s.handleListUserReviews)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/auth/logout", s.handleLogout)
			r.Post("/auth/logout-all", s.handleLogoutAll)
			r.Get("/auth/me", s.handleGetCurrentUser)

			r.Get("/users/me", s.handleGetCurrentUser)
			r.Put("/users/me", s.handleUpdateCurrentUser)
			r.Put("/users/me/password", s.handleChangePassword)
			r.Get("/users/me/favorites", s.handleListFavorites)
			r.Post("/users/me/favorites/{hotelId}", s.handleAddFavorite)
			r.Delete("/users/me/favorites/{hotelId}", s.handleRemoveFavorite)

			r.Post("/bookings/quote", s.handleQuoteBooking)
			r.Post("/bookings", s.handleCreateBooking)
			r.Get("/bookings/my-bookings", s.handleListMyBookings)

			r.Post("/reviews", s.handleCreateReview)
			r.Put("/reviews/{id}", s.handleUpdateReview)
			r.Delete("/reviews/{id}", s.handleDeleteReview)

			// Admin routes
			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)

				r.Get("/users", s.handleListUsers)
				r.Get("/users/{id}", s.handleGetUser)
				r.Post("/users/{id}/suspend", s.handleSuspendUser)
				r.Delete("/users/{id}", s.handleDeleteUser)

				r.Post("/hotels", s.handleCreateHotel)
				r.Put("/hotels/{id}", s.handleUpdateHotel)
				r.Delete("/hotels/{id}", s.handleDeleteHotel)

				r.Get("/bookings", s.handleListBookings)
				r.Get("/bookings/stats", s.handleBookingStats)
			})

			r.Get("/bookings/{id}", s.handleGetBooking)
			r.Put("/bookings/{id}", s.handleUpdateBooking)
			r.Delete("/bookings/{id}", s.handleCancelBooking)
		})
	})
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Response helpers

type errorResponse struct {
	Error            string            `json:"error"`
	Code             string            `json:"code,omitempty"`
	Details          map[string]string `json:"details,omitempty"`
	UnavailableRooms []string          `json:"unavailable_rooms,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var status int
	var resp errorResponse

	var unavailable *domain.UnavailableRoomsError
	if v, ok := booking.AsViolation(err); ok {
		resp = errorResponse{Error: v.Message, Code: strings.ToUpper(string(v.Rule))}
		if v.Field != "" {
			resp.Details = map[string]string{v.Field: v.Message}
		}
		s.writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	if errors.As(err, &unavailable) {
		s.writeJSON(w, http.StatusConflict, errorResponse{
			Error:            unavailable.Error(),
			Code:             "ROOMS_UNAVAILABLE",
			UnavailableRooms: unavailable.Rooms,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		resp = errorResponse{Error: "resource not found", Code: "NOT_FOUND"}

	case errors.Is(err, domain.ErrAlreadyExists):
		status = http.StatusConflict
		resp = errorResponse{Error: "resource already exists", Code: "ALREADY_EXISTS"}

	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
		resp = errorResponse{Error: err.Error(), Code: "INVALID_INPUT"}
		var many domain.ValidationErrors
		var one domain.ValidationError
		switch {
		case errors.As(err, &many) && len(many) > 0:
			resp.Error = many[0].Message
			resp.Details = make(map[string]string, len(many))
			for _, e := range many {
				if _, seen := resp.Details[e.Field]; !seen {
					resp.Details[e.Field] = e.Message
				}
			}
		case errors.As(err, &one):
			resp.Error = one.Message
			resp.Details = map[string]string{one.Field: one.Message}
		}

	case errors.Is(err, domain.ErrInvalidCredential):
		status = http.StatusUnauthorized
		resp = errorResponse{Error: "invalid credentials", Code: "INVALID_CREDENTIALS"}

	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
		resp = errorResponse{Error: "unauthorized", Code: "UNAUTHORIZED"}

	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
		resp = errorResponse{Error: "forbidden", Code: "FORBIDDEN"}

	case errors.Is(err, domain.ErrInvalidStatus):
		status = http.StatusConflict
		resp = errorResponse{Error: err.Error(), Code: "INVALID_STATUS"}

	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
		resp = errorResponse{Error: err.Error(), Code: "CONFLICT"}

	case errors.Is(err, domain.ErrVersionMismatch):
		status = http.StatusConflict
		resp = errorResponse{Error: "resource was modified by another request", Code: "VERSION_MISMATCH"}

	default:
		s.logger.Error("unhandled error", slog.String("error", err.Error()))
		status = http.StatusInternalServerError
		resp = errorResponse{Error: "internal server error", Code: "INTERNAL_ERROR"}
	}

	s.writeJSON(w, status, resp)
}

// readJSON decodes the body into v and checks its struct tags.
func (s *Server) readJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ValidationError{Field: "body", Message: "invalid JSON"}
	}
	return checkRequest(v)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		if s.metrics != nil {
			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			s.metrics.ObserveHTTP(r.Method, route, status, elapsed)
		}

		s.logger.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", elapsed),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
