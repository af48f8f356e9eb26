package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const (
	weatherCacheTTL     = 10 * time.Minute
	openWeatherBaseURL  = "https://api.openweathermap.org/data/2.5/weather"
	maxWeatherCacheSize = 1024
)

type Weather struct {
	Temperature int    `json:"temperature"`
	Description string `json:"description"`
	City        string `json:"city"`
}

type weatherEntry struct {
	data      Weather
	fetchedAt time.Time
}

// WeatherService fetches current conditions from OpenWeather and caches them
// per coordinate pair.
type WeatherService struct {
	apiKey  string
	client  *http.Client
	baseURL string
	now     func() time.Time

	mu    sync.RWMutex
	cache map[string]weatherEntry
}

func NewWeatherService(apiKey string) *WeatherService {
	return &WeatherService{
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: openWeatherBaseURL,
		now:     time.Now,
		cache:   make(map[string]weatherEntry),
	}
}

func (s *WeatherService) Configured() bool { return s.apiKey != "" }

func (s *WeatherService) Current(ctx context.Context, lat, lon string) (Weather, error) {
	if lat == "" || lon == "" {
		return Weather{}, ErrMissingCoordinates
	}
	if !s.Configured() {
		return Weather{}, fmt.Errorf("weather: %w", ErrProviderNotConfigured)
	}

	key := lat + "," + lon

	s.mu.RLock()
	entry, ok := s.cache[key]
	s.mu.RUnlock()
	if ok && s.now().Sub(entry.fetchedAt) < weatherCacheTTL {
		return entry.data, nil
	}

	data, err := s.fetch(ctx, lat, lon)
	if err != nil {
		return Weather{}, err
	}

	s.mu.Lock()
	if len(s.cache) >= maxWeatherCacheSize {
		s.evictExpired()
	}
	s.cache[key] = weatherEntry{data: data, fetchedAt: s.now()}
	s.mu.Unlock()

	return data, nil
}

// evictExpired drops stale entries. Caller holds mu.
func (s *WeatherService) evictExpired() {
	now := s.now()
	for k, e := range s.cache {
		if now.Sub(e.fetchedAt) >= weatherCacheTTL {
			delete(s.cache, k)
		}
	}
}

type openWeatherResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

func (s *WeatherService) fetch(ctx context.Context, lat, lon string) (Weather, error) {
	params := url.Values{}
	params.Set("lat", lat)
	params.Set("lon", lon)
	params.Set("appid", s.apiKey)
	params.Set("units", "metric")
	params.Set("lang", "pt_br")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Weather{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Weather{}, fmt.Errorf("%w: weather request: %v", ErrProviderUnavailable, err)
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return Weather{}, fmt.Errorf("%w: weather API returned status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var body openWeatherResponse
	err = json.NewDecoder(resp.Body).Decode(&body)
	if err != nil {
		return Weather{}, fmt.Errorf("decode weather response: %w", err)
	}

	data := Weather{
		Temperature: int(math.Round(body.Main.Temp)),
		City:        body.Name,
	}
	if len(body.Weather) > 0 {
		data.Description = body.Weather[0].Description
	}

	return data, nil
}
