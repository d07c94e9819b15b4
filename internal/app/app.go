// AngelaMos | 2026
// app.go

package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/perkhub/internal/admin"
	"github.com/carterperez-dev/perkhub/internal/auth"
	"github.com/carterperez-dev/perkhub/internal/claim"
	"github.com/carterperez-dev/perkhub/internal/core"
	"github.com/carterperez-dev/perkhub/internal/deal"
	"github.com/carterperez-dev/perkhub/internal/health"
	"github.com/carterperez-dev/perkhub/internal/middleware"
	"github.com/carterperez-dev/perkhub/internal/store"
	"github.com/carterperez-dev/perkhub/internal/user"
)

// Services is the domain layer shared by the API server and perkctl.
type Services struct {
	Users  *user.Service
	Deals  *deal.Service
	Claims *claim.Service
	Auth   *auth.Service
}

// NewServices wires the domain services over st. tokens may be nil for
// tools that never issue tokens, and metrics may be nil to skip outcome
// counting.
func NewServices(
	st *store.Store,
	tokens auth.TokenIssuer,
	hasher *core.PasswordHasher,
	metrics *core.Metrics,
	logger *slog.Logger,
) *Services {
	var (
		claimRecorder claim.OutcomeRecorder
		authRecorder  auth.OutcomeRecorder
	)
	if metrics != nil {
		claimRecorder = metrics
		authRecorder = metrics
	}

	users := user.NewService(st.Users, logger)
	deals := deal.NewService(st.Deals, logger)

	return &Services{
		Users:  users,
		Deals:  deals,
		Claims: claim.NewService(st.Claims, deals, users, claimRecorder, logger),
		Auth:   auth.NewService(tokens, users, hasher, authRecorder, logger),
	}
}

type RouterDeps struct {
	Services    *Services
	Verifier    middleware.TokenVerifier
	JWKS        http.Handler
	Health      *health.Handler
	Admin       *admin.Handler
	AuthLimiter func(http.Handler) http.Handler
}

// Mount registers probes and the JWKS document at the root, and the API
// both at the root and under /v1.
func Mount(r chi.Router, d RouterDeps) {
	if d.Health != nil {
		d.Health.RegisterRoutes(r)
	}
	if d.JWKS != nil {
		r.Method(http.MethodGet, "/.well-known/jwks.json", d.JWKS)
	}

	registerAPI(r, d)
	r.Route("/v1", func(r chi.Router) {
		registerAPI(r, d)
	})
}

func registerAPI(r chi.Router, d RouterDeps) {
	authenticator := middleware.Authenticator(d.Verifier)
	adminOnly := middleware.RequireAdmin

	auth.NewHandler(d.Services.Auth).RegisterRoutes(r, authenticator, d.AuthLimiter)
	deal.NewHandler(d.Services.Deals).RegisterRoutes(r)

	claimHandler := claim.NewHandler(d.Services.Claims)
	claimHandler.RegisterRoutes(r, authenticator)
	claimHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

	userHandler := user.NewHandler(d.Services.Users)
	userHandler.RegisterRoutes(r, authenticator)
	userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

	if d.Admin != nil {
		d.Admin.RegisterRoutes(r, authenticator, adminOnly)
	}
}
