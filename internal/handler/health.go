package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/newstech/newstech/internal/service"
)

type healthResponse struct {
	Status     string            `json:"status"`
	Message    string            `json:"message"`
	Timestamp  time.Time         `json:"timestamp"`
	TotalUsers int               `json:"totalUsers"`
	Services   map[string]string `json:"services"`
}

type HealthHandler struct {
	userService    *service.UserService
	authService    *service.AuthService
	newsService    *service.NewsService
	weatherService *service.WeatherService
}

func NewHealthHandler(userService *service.UserService, authService *service.AuthService, newsService *service.NewsService, weatherService *service.WeatherService) *HealthHandler {
	return &HealthHandler{
		userService:    userService,
		authService:    authService,
		newsService:    newsService,
		weatherService: weatherService,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	total, err := h.userService.Count(r.Context())
	if err != nil {
		slog.Error("health check database query failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:    "ERROR",
			Message:   "database unavailable",
			Timestamp: time.Now().UTC(),
			Services:  map[string]string{"database": "ERROR"},
		})
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "OK",
		Message:    "authentication server running",
		Timestamp:  time.Now().UTC(),
		TotalUsers: total,
		Services: map[string]string{
			"database":    "OK",
			"googleOAuth": configured(h.authService.GoogleEnabled()),
			"githubOAuth": configured(h.authService.GitHubEnabled()),
			"newsApis":    configured(h.newsService.Configured()),
			"weatherApi":  configured(h.weatherService.Configured()),
		},
	})
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
