// Package api provides the HTTP API server for the Cashback ID name service.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/cashback-id/internal/ledger"
	"github.com/cashback-id/internal/logging"
	"github.com/cashback-id/internal/proof"
	"github.com/cashback-id/internal/registrar"
	"github.com/cashback-id/internal/routing"
	"github.com/cashback-id/internal/service"
)

// Service interfaces for dependency injection and testing

// NameServiceInterface defines the name service operations the handlers use.
type NameServiceInterface interface {
	Claim(ctx context.Context, input *service.ClaimInput) (*service.ClaimResult, error)
	RegisterOnChain(ctx context.Context, input *service.RegisterInput) (*service.RegisterResult, error)
	Resolve(ctx context.Context, name string) (*service.ResolveResult, error)
	SetPreferences(ctx context.Context, input *service.SetPreferencesInput) (*service.SetPreferencesResult, error)
	RegistrarStatus() registrar.Status
}

// TransferStatusInterface defines the routing service operations.
type TransferStatusInterface interface {
	CheckTransferStatus(ctx context.Context, txHash string, fromChainID, toChainID int64) *routing.TransferStatusResult
}

// PaymentInterface defines the settlement executor operations.
type PaymentInterface interface {
	ProcessPayment(ctx context.Context, req *ledger.PaymentRequest) (*ledger.PaymentResult, error)
	Configured() bool
	Network() string
	PackageID() string
}

// ProofStoreInterface defines the cashback proof pinning operations.
type ProofStoreInterface interface {
	UploadProof(ctx context.Context, p *proof.CashbackProof) (*proof.UploadResult, error)
	Fetch(ctx context.Context, cid string, dest interface{}) error
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host              string
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	RequestsPerSecond int
	Burst             int
}

// Server represents the HTTP API server.
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	names      NameServiceInterface
	transfers  TransferStatusInterface
	payments   PaymentInterface
	proofs     ProofStoreInterface
	config     *ServerConfig
	logger     *logging.Logger
}

// NewServer creates a new API server instance.
func NewServer(
	config *ServerConfig,
	names NameServiceInterface,
	transfers TransferStatusInterface,
	payments PaymentInterface,
	proofs ProofStoreInterface,
	logger *logging.Logger,
) *Server {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	s := &Server{
		router:    mux.NewRouter(),
		names:     names,
		transfers: transfers,
		payments:  payments,
		proofs:    proofs,
		config:    config,
		logger:    logger.WithField("component", "api"),
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RequestsPerSecond, s.config.Burst)

	// Middleware order matters: log first, recover inside the log wrapper.
	s.router.Use(LoggingMiddleware(s.logger))
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(rateLimiter))

	s.setupRoutes()

	readTimeout := s.config.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 15 * time.Second
	}
	writeTimeout := s.config.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 90 * time.Second // registration transactions can be slow
	}
	idleTimeout := s.config.IdleTimeout
	if idleTimeout == 0 {
		idleTimeout = 60 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Name claim and registration endpoints
	ens := api.PathPrefix("/ens").Subrouter()
	ens.HandleFunc("/claim-subdomain", s.handleClaimSubdomain).Methods("POST")
	ens.HandleFunc("/register-onchain", s.handleRegisterOnChain).Methods("POST")
	ens.HandleFunc("/registrar-status", s.handleRegistrarStatus).Methods("GET")
	ens.HandleFunc("/resolve", s.handleResolve).Methods("GET")
	ens.HandleFunc("/set-preferences", s.handleSetPreferences).Methods("POST")

	// Payment flow endpoints
	api.HandleFunc("/pay", s.handlePay).Methods("POST")
	api.HandleFunc("/transfers/status", s.handleTransferStatus).Methods("GET")

	// Cashback proof endpoints
	api.HandleFunc("/proofs", s.handleCreateProof).Methods("POST")
	api.HandleFunc("/proofs/{cid}", s.handleGetProof).Methods("GET")
}

// Router exposes the configured router (used by handler tests).
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
