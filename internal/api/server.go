// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/ifrs17-reporting/internal/ifrs17"
	"github.com/ifrs17-reporting/internal/logging"
	"github.com/ifrs17-reporting/internal/models"
	"github.com/ifrs17-reporting/internal/service"
)

// Service interfaces for dependency injection and testing

// ReportingServiceInterface defines the interface for IFRS 17 reporting operations
type ReportingServiceInterface interface {
	Metadata(ctx context.Context) (*ifrs17.MetadataView, error)
	DashboardSummary(ctx context.Context) (*ifrs17.Summary, error)
	LiabilityTrend(ctx context.Context) (*ifrs17.TrendSeries, error)
	CSMTrend(ctx context.Context) (*ifrs17.TrendSeries, error)
	PortfolioComparison(ctx context.Context) ([]ifrs17.ComparisonRow, error)
	Dashboard(ctx context.Context) (*ifrs17.Dashboard, error)
	LiabilityReconciliation(ctx context.Context) (*ifrs17.LiabilityReconciliation, error)
	CSMReconciliation(ctx context.Context) (*ifrs17.CSMReconciliation, error)
	Data(ctx context.Context, filter ifrs17.SliceFilter) (ifrs17.DataSlice, error)
	Reload(ctx context.Context) (*service.ReloadResult, error)
}

// UserServiceInterface defines the interface for account and authentication operations
type UserServiceInterface interface {
	Create(ctx context.Context, input *models.NewUser) (*models.User, error)
	Login(ctx context.Context, email, password string) (*service.TokenResponse, error)
	VerifyToken(ctx context.Context, token string) (*service.Session, error)
	Logout(ctx context.Context, session *service.Session) error
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	RequireAdmin(ctx context.Context, userID int64) (*models.User, error)
}

// Server represents the HTTP API server.
type Server struct {
	router           *mux.Router
	httpServer       *http.Server
	reportingService ReportingServiceInterface
	userService      UserServiceInterface
	logger           *logging.Logger
	config           *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RateLimitRPS    float64 // Requests per second per client
	RateLimitBurst  int
}

// NewServer creates a new API server instance.
func NewServer(
	config *ServerConfig,
	reportingService ReportingServiceInterface,
	userService UserServiceInterface,
	logger *logging.Logger,
) *Server {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	s := &Server{
		router:           mux.NewRouter(),
		reportingService: reportingService,
		userService:      userService,
		logger:           logger.WithField("component", "api"),
		config:           config,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RateLimitRPS, s.config.RateLimitBurst)

	// Set up middleware (order matters!)
	s.router.Use(RequestIDMiddleware)
	s.router.Use(LoggingMiddleware(s.logger))
	s.router.Use(RecoveryMiddleware(s.logger))
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(rateLimiter)) // Rate limiting after CORS
	s.router.Use(CompressionMiddleware)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	authenticated := AuthMiddleware(s.userService)

	s.router.Handle("/", authenticated(http.HandlerFunc(s.handleRoot))).Methods("GET")
	s.router.Handle("/health", authenticated(http.HandlerFunc(s.handleHealth))).Methods("GET")

	api := s.router.PathPrefix("/api/v1").Subrouter()

	// IFRS 17 endpoints
	api.HandleFunc("/ifrs17/metadata", s.handleMetadata).Methods("GET")
	api.HandleFunc("/ifrs17/dashboard", s.handleDashboard).Methods("GET")
	api.HandleFunc("/ifrs17/dashboard/summary", s.handleDashboardSummary).Methods("GET")
	api.HandleFunc("/ifrs17/dashboard/liability-trend", s.handleLiabilityTrend).Methods("GET")
	api.HandleFunc("/ifrs17/dashboard/csm-trend", s.handleCSMTrend).Methods("GET")
	api.HandleFunc("/ifrs17/dashboard/portfolio-comparison", s.handlePortfolioComparison).Methods("GET")
	api.HandleFunc("/ifrs17/reconciliations/liability", s.handleLiabilityReconciliation).Methods("GET")
	api.HandleFunc("/ifrs17/reconciliations/csm", s.handleCSMReconciliation).Methods("GET")
	api.HandleFunc("/ifrs17/data", s.handleData).Methods("GET")
	api.Handle("/ifrs17/reload", authenticated(s.requireAdmin(http.HandlerFunc(s.handleReload)))).Methods("POST")

	// Auth endpoints
	api.HandleFunc("/register", s.handleRegister).Methods("POST")
	api.HandleFunc("/login", s.handleLogin).Methods("POST")
	api.Handle("/logout", authenticated(http.HandlerFunc(s.handleLogout))).Methods("POST")

	// User endpoints
	api.Handle("/users", authenticated(s.requireAdmin(http.HandlerFunc(s.handleListUsers)))).Methods("GET")
	api.Handle("/users", authenticated(http.HandlerFunc(s.handleCreateUser))).Methods("POST")
	api.Handle("/users/{id}", authenticated(http.HandlerFunc(s.handleGetUser))).Methods("GET")

	// CORS preflight; answered by CORSMiddleware
	s.router.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

// handleRoot handles GET / requests.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "IFRS 17 reporting API",
	})
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "ifrs17-reporting",
	})
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")
	return s.httpServer.Shutdown(ctx)
}
