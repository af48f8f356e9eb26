package routes

import (
	"net/http"

	"github.com/newstech/newstech/internal/app"
	"github.com/newstech/newstech/internal/handler"
	"github.com/newstech/newstech/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService, app.Cfg.FrontendURL)
	users := handler.NewUserHandler(app.UserService)
	news := handler.NewNewsHandler(app.NewsService, app.WeatherService)
	health := handler.NewHealthHandler(app.UserService, app.AuthService, app.NewsService, app.WeatherService)

	session := middleware.NewAuth(app.TokenService)
	rateLimiter := app.RateLimiter.Limit(app.Cfg.TrustProxy)

	mux := http.NewServeMux()

	// ============================================================================
	// AUTH (rate limited)
	// ============================================================================

	mux.HandleFunc("POST /api/auth/register", rateLimiter(auth.Register))
	mux.HandleFunc("POST /api/auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("POST /api/auth/google", rateLimiter(auth.Google))
	mux.HandleFunc("GET /api/auth/github", rateLimiter(auth.GitHubAuth))
	mux.HandleFunc("GET /api/auth/github/callback", rateLimiter(auth.GitHubCallback))

	// ============================================================================
	// USERS (owner only)
	// ============================================================================

	mux.HandleFunc("GET /api/users/{id}", session.RequireAuth(users.Show))
	mux.HandleFunc("PUT /api/users/{id}", session.RequireAuth(users.Update))

	// ============================================================================
	// CONTENT
	// ============================================================================

	mux.HandleFunc("GET /api/news", session.OptionalAuth(news.List))
	mux.HandleFunc("GET /api/news/categories", news.Categories)
	mux.HandleFunc("GET /api/weather", session.OptionalAuth(news.Weather))

	// ============================================================================
	// SYSTEM
	// ============================================================================

	mux.HandleFunc("GET /api/health", health.Health)

	// 404
	mux.HandleFunc("/", handler.NotFound)

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.RequestLogging,
		middleware.CORS(app.Cfg.FrontendURL), // Answers preflight before routing
		middleware.Config(app.Cfg),
		middleware.SecurityHeaders,
	)
}
