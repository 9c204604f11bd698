package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/misenoti/misenoti/internal/auth/metrics"
	"github.com/misenoti/misenoti/internal/auth/service"
	"github.com/misenoti/misenoti/pkg/httpx"
	"github.com/misenoti/misenoti/pkg/jwtx"
	"github.com/misenoti/misenoti/pkg/slogx"

	_ "github.com/misenoti/misenoti/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	db            Pinger
	AuthService   *service.AuthService
	Metrics       *metrics.Metrics
	Verifications Pinger // Optional: set when verification attempts live outside the database

	ActionLimit  httpx.RateLimitConfig
	SessionLimit httpx.RateLimitConfig
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	db Pinger,
	cors httpx.CORSConfig,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		db:           db,
		logger:       logger,
		ActionLimit:  httpx.StrictLimit,
		SessionLimit: httpx.LenientLimit,
	}

	// Request logging runs outermost so preflights are logged too.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(cors),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			MiseNoti Authentication API
//	@version		0.1.0
//	@description	Registration with contact verification, login, and password reset for MiseNoti.
//	@description
//	@description				All account operations are POSTed to /api/auth and selected by the "action" field.
//	@description				Session tokens are HS256 JWTs valid for 24 hours.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	actionHandler := &ActionHandler{
		Auth:    r.AuthService,
		Metrics: r.Metrics,
	}

	// Every method reaches the handler so it can answer 405 in the JSON envelope.
	// Strict limit by IP: this endpoint checks passwords, codes and reset tokens.
	r.Mux.Handle("/api/auth",
		httpx.Chain(actionHandler,
			httpx.RateLimitByIP(r.ActionLimit),
		),
	)

	r.Mux.Handle("GET /v1/session",
		httpx.Chain(SessionHandler(),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(r.SessionLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.db, r.Verifications),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	if r.Metrics != nil {
		r.Mux.Handle("GET /metrics", r.Metrics.Handler())
	}
}
