// Package httpapi exposes the delivery quote API over HTTP.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cvneat/delivery-quote-service/internal/domain"
)

// QuoteResolver resolves delivery-fee requests.
type QuoteResolver interface {
	Quote(ctx context.Context, req domain.QuoteRequest) (domain.DeliveryQuote, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the quote endpoint plus health, readiness and metrics.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	quotes     QuoteResolver
	ready      ReadinessChecker
	logger     *slog.Logger
}

// NewServer wires the routes onto a gin engine.
func NewServer(addr string, quotes QuoteResolver, ready ReadinessChecker, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      engine,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		engine: engine,
		quotes: quotes,
		ready:  ready,
		logger: logger,
	}

	engine.POST("/delivery/calculate", s.handleCalculate)
	engine.GET("/healthz", s.handleHealth)
	engine.GET("/readyz", s.handleReady)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// calculateRequest mirrors what the ordering frontend sends.
type calculateRequest struct {
	DeliveryAddress   string  `json:"deliveryAddress" binding:"required"`
	RestaurantID      string  `json:"restaurantId"`
	RestaurantAddress string  `json:"restaurantAddress"`
	OrderAmount       float64 `json:"orderAmount"`
}

type quoteResponse struct {
	Success          bool               `json:"success"`
	Deliverable      bool               `json:"deliverable"`
	Distance         float64            `json:"distance"`
	DistanceSource   string             `json:"distance_source,omitempty"`
	Fee              float64            `json:"fee"`
	Zone             string             `json:"zone,omitempty"`
	EstimatedMinutes int                `json:"estimated_minutes,omitempty"`
	OrderAmount      float64            `json:"order_amount,omitempty"`
	Restaurant       *domain.Coordinate `json:"restaurant_coordinates,omitempty"`
	Client           *domain.Coordinate `json:"client_coordinates,omitempty"`
	DisplayName      string             `json:"display_name,omitempty"`
	Message          string             `json:"message,omitempty"`
	Suggestions      []string           `json:"suggestions,omitempty"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// handleCalculate answers delivery-fee requests. Business outcomes such
// as "too far" or "address not found" are HTTP 200 with deliverable
// false; only malformed input and upstream outages map to error codes.
func (s *Server) handleCalculate(c *gin.Context) {
	var req calculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "deliveryAddress is required"})
		return
	}

	quote, err := s.quotes.Quote(c.Request.Context(), domain.QuoteRequest{
		DeliveryAddress:   req.DeliveryAddress,
		RestaurantID:      req.RestaurantID,
		RestaurantAddress: req.RestaurantAddress,
		OrderAmount:       req.OrderAmount,
	})
	if err != nil {
		s.writeQuoteError(c, err)
		return
	}

	resp := quoteResponse{
		Success:          true,
		Deliverable:      quote.Deliverable,
		Distance:         quote.DistanceKm,
		DistanceSource:   string(quote.DistanceSource),
		Fee:              quote.FeeEUR,
		Zone:             quote.Zone,
		EstimatedMinutes: quote.EstimatedMinutes,
		OrderAmount:      quote.OrderAmount,
		DisplayName:      quote.DisplayName,
		Message:          quote.Reason,
		Suggestions:      quote.Suggestions,
	}
	if !quote.RestaurantCoordinate.IsZero() {
		rc := quote.RestaurantCoordinate
		resp.Restaurant = &rc
	}
	if !quote.ClientCoordinate.IsZero() {
		cc := quote.ClientCoordinate
		resp.Client = &cc
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) writeQuoteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAddress):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Adresse invalide"})
	case errors.Is(err, domain.ErrProviderUnavailable):
		c.JSON(http.StatusBadGateway, errorResponse{Error: "Service de géocodage indisponible"})
	default:
		s.logger.Error("quote failed", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "Erreur interne"})
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.ready.CheckReadiness(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
