package messaging

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/strokewatch/platform/internal/shared/auth"
	"github.com/strokewatch/platform/internal/shared/errors"
	"github.com/strokewatch/platform/internal/shared/types"
)

// Handler provides HTTP handlers for messages and notifications
type Handler struct {
	service *Service
}

// NewHandler creates a new messaging handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes registers the messaging routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/messages", h.SendMessage)
	r.Get("/messages", h.ListMessages)
	r.Post("/messages/{messageID}/read", h.MarkMessageRead)
	r.Get("/notifications", h.ListNotifications)
	r.Post("/notifications/{notificationID}/read", h.MarkNotificationRead)
	r.Get("/unread", h.UnreadCounts)

	return r
}

type sendMessageRequest struct {
	To      types.ID    `json:"to"`
	Subject string      `json:"subject"`
	Content string      `json:"content"`
	Type    MessageType `json:"type"`
}

// SendMessage sends a message from the authenticated user
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}
	if req.To.IsZero() || req.Content == "" {
		writeError(w, errors.Validation("missing required fields", map[string]string{
			"to":      "recipient is required",
			"content": "content is required",
		}))
		return
	}

	m, err := h.service.Send(r.Context(), user.ID, req.To, req.Subject, req.Content, req.Type)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

// ListMessages lists the authenticated user's messages. With ?box=sent
// it lists sent messages instead of the inbox.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	var (
		messages []*Message
		err      error
	)
	if r.URL.Query().Get("box") == "sent" {
		messages, err = h.service.Sent(r.Context(), user.ID)
	} else {
		messages, err = h.service.Inbox(r.Context(), user.ID)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  messages,
		"total": len(messages),
	})
}

// MarkMessageRead marks one of the user's messages read
func (h *Handler) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "messageID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid message ID"))
		return
	}

	m, err := h.service.MarkRead(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if m.ToUserID != user.ID {
		writeError(w, errors.Forbidden("message belongs to another user"))
		return
	}

	writeJSON(w, http.StatusOK, m)
}

// ListNotifications lists the authenticated user's notifications
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	notifications, err := h.service.Notifications(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  notifications,
		"total": len(notifications),
	})
}

// MarkNotificationRead marks one of the user's notifications read
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "notificationID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid notification ID"))
		return
	}

	n, err := h.service.MarkNotificationRead(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if n.UserID != user.ID {
		writeError(w, errors.Forbidden("notification belongs to another user"))
		return
	}

	writeJSON(w, http.StatusOK, n)
}

// UnreadCounts returns unread message and notification counts
func (h *Handler) UnreadCounts(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	messages, notifications, err := h.service.UnreadCounts(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"messages":      messages,
		"notifications": notifications,
	})
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
