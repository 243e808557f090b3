// File: internal/server/handlers.go
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/webpilot-ai/webpilot/internal/registry"
)

// ExecuteRequest is the inbound automation submission.
type ExecuteRequest struct {
	Prompt string `json:"prompt"`
	// SaveScreenshot defaults to true when omitted.
	SaveScreenshot *bool `json:"save_screenshot"`
}

// Handlers manages the HTTP request handling for the automation API.
type Handlers struct {
	log           *zap.Logger
	registry      *registry.Registry
	screenshotDir string
}

// NewHandlers creates a Handlers instance.
func NewHandlers(logger *zap.Logger, reg *registry.Registry, screenshotDir string) *Handlers {
	if screenshotDir == "" {
		screenshotDir = "."
	}
	return &Handlers{
		log:           logger.Named("handlers"),
		registry:      reg,
		screenshotDir: screenshotDir,
	}
}

// RegisterRoutes sets up the routing for the automation API.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HandleHealthCheck)
	r.Post("/execute", h.HandleExecute)
	r.Get("/execution/{executionID}", h.HandleGetExecution)
	r.Get("/screenshot/{filename}", h.HandleServeScreenshot)
}

// HandleHealthCheck confirms the server is responsive.
func (h *Handlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"message":   "webpilot automation backend",
	})
}

// HandleExecute accepts a prompt and schedules it for background
// execution, responding immediately with the execution id.
func (h *Handlers) HandleExecute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		h.respondError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	saveScreenshot := true
	if req.SaveScreenshot != nil {
		saveScreenshot = *req.SaveScreenshot
	}

	id, err := h.registry.Submit(prompt, saveScreenshot)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to start automation: %v", err))
		return
	}

	h.respondJSON(w, http.StatusAccepted, map[string]any{
		"success":      true,
		"execution_id": id,
		"status":       "running",
		"message":      "automation started successfully",
	})
}

// HandleGetExecution returns the full execution record for an id.
func (h *Handlers) HandleGetExecution(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "executionID")
	record, err := h.registry.Get(id)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "execution not found")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "failed to read execution record")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"execution": record,
	})
}

// HandleServeScreenshot serves a captured screenshot file. Only PNG names
// without path separators are accepted; a missing file gets an SVG
// placeholder so dashboards always have something to render.
func (h *Handlers) HandleServeScreenshot(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	if !strings.HasSuffix(filename, ".png") ||
		strings.ContainsAny(filename, `/\`) ||
		strings.Contains(filename, "..") {
		h.respondError(w, http.StatusBadRequest, "invalid filename")
		return
	}

	path := filepath.Join(h.screenshotDir, filename)
	if _, err := os.Stat(path); err != nil {
		h.servePlaceholder(w, filename)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}

// servePlaceholder renders a minimal SVG for screenshots that were never
// written (e.g. the capture failed on the automation server).
func (h *Handlers) servePlaceholder(w http.ResponseWriter, filename string) {
	svg := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="400" height="300" viewBox="0 0 400 300">
    <rect width="400" height="300" fill="#f3f4f6"/>
    <text x="200" y="150" text-anchor="middle" fill="#6b7280" font-family="Arial" font-size="16">Screenshot: %s</text>
    <text x="200" y="180" text-anchor="middle" fill="#9ca3af" font-family="Arial" font-size="12">(file not found)</text>
</svg>`, filename)

	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(svg)); err != nil {
		h.log.Error("Failed to write placeholder image", zap.Error(err))
	}
}

func (h *Handlers) respondJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, statusCode int, message string) {
	h.respondJSON(w, statusCode, map[string]any{
		"success": false,
		"error":   message,
	})
}
