// Package gateway is the HTTP surface of the rental engine. It authenticates
// callers, binds and validates requests, calls the core services and maps
// their typed errors onto HTTP statuses.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/beesaferoot/rental-engine/internal/auth"
	"github.com/beesaferoot/rental-engine/internal/logging"
	"github.com/beesaferoot/rental-engine/internal/models"
	"github.com/beesaferoot/rental-engine/internal/policy"
	"github.com/beesaferoot/rental-engine/internal/property"
	"github.com/beesaferoot/rental-engine/internal/reservation"
)

// Authenticator is the part of auth.Authenticator the gateway uses.
type Authenticator interface {
	Register(ctx context.Context, req auth.RegisterRequest) (*auth.Session, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	Resolve(ctx context.Context, raw string) (*models.User, error)
}

// Properties is the part of property.Service the gateway uses.
type Properties interface {
	Create(ctx context.Context, caller policy.Identity, in property.Input) (*models.Property, error)
	Update(ctx context.Context, caller policy.Identity, id uint, in property.Input) (*models.Property, error)
	Delete(ctx context.Context, caller policy.Identity, id uint) error
	SetStatus(ctx context.Context, caller policy.Identity, id uint, status models.PropertyStatus) (*models.Property, error)
	Get(ctx context.Context, id uint) (*models.Property, error)
	List(ctx context.Context, status, query string) ([]models.Property, error)
	ListMine(ctx context.Context, caller policy.Identity) ([]models.Property, error)
}

// Reservations is the part of reservation.Engine the gateway uses.
type Reservations interface {
	CreateBooking(ctx context.Context, caller policy.Identity, req reservation.Request) (*models.Booking, error)
	ListForRenter(ctx context.Context, caller policy.Identity) ([]models.Booking, error)
	ListForProperty(ctx context.Context, caller policy.Identity, propertyID uint) ([]models.Booking, error)
}

// Pinger reports database health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Gateway struct {
	auth         Authenticator
	properties   Properties
	reservations Reservations
	health       Pinger
	logger       *slog.Logger
}

type Deps struct {
	Auth         Authenticator
	Properties   Properties
	Reservations Reservations
	Health       Pinger
	Logger       *slog.Logger
}

func New(deps Deps) (*Gateway, error) {
	if err := registerValidators(); err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Gateway{
		auth:         deps.Auth,
		properties:   deps.Properties,
		reservations: deps.Reservations,
		health:       deps.Health,
		logger:       logger,
	}, nil
}

// Handler builds the routing tree.
func (g *Gateway) Handler() http.Handler {
	r := gin.New()
	r.Use(RequestID(), AccessLog(g.logger), g.Recovery())
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody{Error: "not_found", Message: "route not found"})
	})

	r.GET("/healthz", g.healthz)

	authn := g.Authenticate()

	a := r.Group("/auth")
	a.POST("/register", g.register)
	a.POST("/login", g.login)
	a.GET("/me", authn, g.me)

	p := r.Group("/properties")
	p.GET("", g.listProperties)
	p.GET("/my", authn, g.listMyProperties)
	p.GET("/:id", g.getProperty)
	p.POST("", authn, g.createProperty)
	p.PUT("/:id", authn, g.updateProperty)
	p.DELETE("/:id", authn, g.deleteProperty)
	p.PATCH("/:id/status", authn, g.setPropertyStatus)

	rentals := r.Group("/rentals", authn)
	rentals.POST("", g.createRental)
	rentals.GET("/my-rentals", g.myRentals)
	rentals.GET("/property/:propertyId", g.propertyRentals)

	return r
}

func (g *Gateway) healthz(c *gin.Context) {
	if g.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := g.health.Ping(ctx); err != nil {
			g.logger.WarnContext(ctx, "health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Serve runs the HTTP server on addr until ctx is cancelled, then drains
// in-flight requests.
func (g *Gateway) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           g.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	g.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
