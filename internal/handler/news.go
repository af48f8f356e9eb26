package handler

import (
	"net/http"
	"strconv"

	"github.com/newstech/newstech/internal/service"
)

type NewsHandler struct {
	newsService    *service.NewsService
	weatherService *service.WeatherService
}

func NewNewsHandler(newsService *service.NewsService, weatherService *service.WeatherService) *NewsHandler {
	return &NewsHandler{
		newsService:    newsService,
		weatherService: weatherService,
	}
}

func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := service.DefaultNewsLimit
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "limit must be a number")
			return
		}
		limit = service.ClampNewsLimit(n)
	}

	articles, err := h.newsService.Latest(r.Context(), query.Get("search"), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"news":  articles,
		"total": len(articles),
	})
}

func (h *NewsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, service.Categories)
}

func (h *NewsHandler) Weather(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	weather, err := h.weatherService.Current(r.Context(), query.Get("lat"), query.Get("lon"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, weather)
}
