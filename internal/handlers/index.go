package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

const welcomeMessage = "Welcome to the Happy Thoughts API"

// Endpoint is one registered method and path.
type Endpoint struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// Index lists every route registered on routes.
func Index(routes chi.Routes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, http.StatusOK, map[string]any{
			"message":   welcomeMessage,
			"endpoints": listEndpoints(routes),
		}, welcomeMessage)
	}
}

func listEndpoints(routes chi.Routes) []Endpoint {
	endpoints := []Endpoint{}
	_ = chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		route = strings.ReplaceAll(route, "/*/", "/")
		if len(route) > 1 {
			route = strings.TrimSuffix(route, "/")
		}
		endpoints = append(endpoints, Endpoint{Method: method, Path: route})
		return nil
	})
	sort.Slice(endpoints, func(i, j int) bool {
		if endpoints[i].Path != endpoints[j].Path {
			return endpoints[i].Path < endpoints[j].Path
		}
		return endpoints[i].Method < endpoints[j].Method
	})
	return endpoints
}

const pingTimeout = 2 * time.Second

// Healthz reports whether the store answers a ping.
func Healthz(ping func(ctx context.Context) error, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := ping(ctx); err != nil {
			logger.WarnContext(r.Context(), "store ping failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "Store unavailable.", nil)
			return
		}
		writeSuccess(w, http.StatusOK, "ok", "Healthy.")
	}
}
