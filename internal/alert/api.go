package alert

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/strokewatch/platform/internal/shared/auth"
	"github.com/strokewatch/platform/internal/shared/errors"
	"github.com/strokewatch/platform/internal/shared/types"
)

// Handler provides HTTP handlers for alert inboxes
type Handler struct {
	store Store
}

// NewHandler creates a new alert handler
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Routes registers the alert routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListAlerts)
	r.Post("/{alertID}/acknowledge", h.AcknowledgeAlert)

	return r
}

// ListAlerts lists the authenticated recipient's alerts
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	alerts, err := h.store.ForRecipient(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  alerts,
		"total": len(alerts),
	})
}

// AcknowledgeAlert acknowledges one alert in the recipient's inbox
func (h *Handler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "alertID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid alert ID"))
		return
	}

	existing, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if existing.RecipientID != user.ID {
		writeError(w, errors.Forbidden("alert belongs to another recipient"))
		return
	}

	acked, err := h.store.Acknowledge(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, acked)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	if appErr, ok := err.(*errors.AppError); ok {
		w.WriteHeader(appErr.HTTPStatus)
		json.NewEncoder(w).Encode(map[string]any{
			"error":   appErr.Message,
			"code":    appErr.Code,
			"details": appErr.Details,
		})
		return
	}

	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
}
