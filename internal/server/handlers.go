// internal/server/handlers.go
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/tulsbot-supervisor/internal/commands"
	"github.com/tamzrod/tulsbot-supervisor/internal/forward"
)

// Handlers adapts Commands to HTTP.
type Handlers struct {
	cmds   Commands
	logger *logrus.Logger
}

func NewHandlers(cmds Commands, logger *logrus.Logger) *Handlers {
	return &Handlers{cmds: cmds, logger: logger}
}

func respondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

func (h *Handlers) GetHealthJSON(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.cmds.GetHealth())
}

func (h *Handlers) TogglePopover(w http.ResponseWriter, r *http.Request) {
	h.respondAction(w, "toggle_popover", h.cmds.TogglePopover())
}

func (h *Handlers) HidePopover(w http.ResponseWriter, r *http.Request) {
	h.respondAction(w, "hide_popover", h.cmds.HidePopover())
}

func (h *Handlers) ShowMainWindow(w http.ResponseWriter, r *http.Request) {
	h.respondAction(w, "show_main_window", h.cmds.ShowMainWindow())
}

func (h *Handlers) respondAction(w http.ResponseWriter, command string, err error) {
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"command": command,
			"error":   err,
		}).Warn("Command failed")
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type forwardResponse struct {
	Body string `json:"body"`
}

func (h *Handlers) ForwardRequestJSON(w http.ResponseWriter, r *http.Request) {
	var req commands.ForwardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		respondWithError(w, http.StatusBadRequest, "url is required")
		return
	}

	body, err := h.cmds.ForwardRequest(r.Context(), req)
	if err != nil {
		if errors.Is(err, forward.ErrUnsupportedMethod) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithError(w, http.StatusBadGateway, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, forwardResponse{Body: body})
}
