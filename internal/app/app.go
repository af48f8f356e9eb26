package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/newstech/newstech/internal/config"
	"github.com/newstech/newstech/internal/db"
	"github.com/newstech/newstech/internal/middleware"
	"github.com/newstech/newstech/internal/repository"
	"github.com/newstech/newstech/internal/service"
)

// Providers are the external collaborators. A nil field means the feature is
// not configured.
type Providers struct {
	Google service.GoogleVerifier
	GitHub service.GitHubProvider
	News   service.ArticleSource
}

type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	TokenService   *service.TokenService
	AuthService    *service.AuthService
	UserService    *service.UserService
	NewsService    *service.NewsService
	WeatherService *service.WeatherService
	RateLimiter    *middleware.RateLimiter
}

func New(cfg *config.Config) (*App, error) {
	// Fail before touching the database when the signing secret is missing
	if cfg.JWTSecret == "" {
		return nil, service.ErrMissingSecret
	}

	database, err := db.Open(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	a, err := Build(cfg, database, DefaultProviders(cfg))
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	return a, nil
}

// DefaultProviders builds the real provider clients for whatever is configured.
func DefaultProviders(cfg *config.Config) Providers {
	var p Providers
	if cfg.GoogleConfigured() {
		p.Google = service.NewGoogleVerifier(cfg.GoogleClientID)
	}
	if cfg.GitHubConfigured() {
		p.GitHub = service.NewGitHubProvider(service.GitHubOptions{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  cfg.PublicURL + "/api/auth/github/callback",
		})
	}
	if cfg.GNewsAPIKey != "" {
		p.News = service.NewGNewsSource(cfg.GNewsAPIKey)
	}
	return p
}

// Build wires repositories and services over an already migrated database.
func Build(cfg *config.Config, database *sqlx.DB, providers Providers) (*App, error) {
	tokenService, err := service.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	// Repositories
	accountRepository := repository.NewAccountRepository(database)

	// Services
	linker := service.NewLinker(accountRepository)
	authService := service.NewAuthService(
		accountRepository,
		tokenService,
		linker,
		providers.Google,
		providers.GitHub,
	)
	userService := service.NewUserService(accountRepository)
	newsService := service.NewNewsService(providers.News)
	weatherService := service.NewWeatherService(cfg.OpenWeatherAPIKey)

	return &App{
		Cfg:            cfg,
		DB:             database,
		TokenService:   tokenService,
		AuthService:    authService,
		UserService:    userService,
		NewsService:    newsService,
		WeatherService: weatherService,
		RateLimiter:    middleware.NewRateLimiter(cfg.RateLimitAuth, cfg.RateLimitWindow),
	}, nil
}

func (a *App) Close() error {
	if a.RateLimiter != nil {
		a.RateLimiter.Stop()
	}
	return db.Close(a.DB)
}
