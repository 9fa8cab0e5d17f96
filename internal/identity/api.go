package identity

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/strokewatch/platform/internal/shared/auth"
	"github.com/strokewatch/platform/internal/shared/config"
	"github.com/strokewatch/platform/internal/shared/errors"
	"github.com/strokewatch/platform/internal/shared/types"
)

// Handler provides HTTP handlers for accounts and clinical notes
type Handler struct {
	repo    Repository
	notes   NoteStore
	authCfg config.AuthConfig
}

// NewHandler creates a new identity handler
func NewHandler(repo Repository, notes NoteStore, authCfg config.AuthConfig) *Handler {
	return &Handler{repo: repo, notes: notes, authCfg: authCfg}
}

// PublicRoutes registers routes that do not require a session
func (h *Handler) PublicRoutes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	return r
}

// Routes registers the authenticated account routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/me", h.Me)
	r.With(auth.RequireRoles(string(RoleAdministrator))).Get("/", h.ListUsers)
	r.With(auth.RequireRoles(string(RoleDoctor))).Post("/patients/{patientID}/notes", h.CreateNote)
	r.With(auth.RequireRoles(string(RoleDoctor))).Get("/patients/{patientID}/notes", h.ListNotes)

	return r
}

type registerRequest struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Password  string `json:"password"`
	Role      Role   `json:"role"`
	Specialty string `json:"specialty"`
}

// Register creates a new account and returns it with a session token
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	details := map[string]string{}
	if req.Email == "" {
		details["email"] = "email is required"
	}
	if req.Name == "" {
		details["name"] = "name is required"
	}
	if req.Password == "" {
		details["password"] = "password is required"
	}
	if !req.Role.Valid() {
		details["role"] = "role must be patient, caregiver, doctor or administrator"
	}
	if len(details) > 0 {
		writeError(w, errors.Validation("invalid registration", details))
		return
	}

	u := NewUser(req.Email, req.Name, req.Role, req.Specialty, req.Password, time.Now())
	if err := h.repo.Create(r.Context(), u); err != nil {
		writeError(w, err)
		return
	}

	token, err := auth.IssueToken(h.authCfg, u.ID, string(u.Role), u.Name, u.Email)
	if err != nil {
		writeError(w, errors.Internal(err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":  u,
		"token": token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and returns a session token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	u, err := h.repo.GetByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, errors.Unauthorized("invalid credentials"))
		return
	}
	if !u.CheckPassword(req.Password) {
		writeError(w, errors.Unauthorized("invalid credentials"))
		return
	}

	token, err := auth.IssueToken(h.authCfg, u.ID, string(u.Role), u.Name, u.Email)
	if err != nil {
		writeError(w, errors.Internal(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":  u,
		"token": token,
	})
}

// Me returns the authenticated user's account
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	u, err := h.repo.Get(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, u)
}

// ListUsers lists all accounts, optionally filtered by ?role=
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	var (
		users []*User
		err   error
	)
	if role := Role(r.URL.Query().Get("role")); role != "" {
		if !role.Valid() {
			writeError(w, errors.BadRequest("unknown role"))
			return
		}
		users, err = h.repo.ListByRole(r.Context(), role)
	} else {
		users, err = h.repo.List(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  users,
		"total": len(users),
	})
}

type createNoteRequest struct {
	Type NoteType `json:"note_type"`
	Body string   `json:"body"`
}

// CreateNote records a clinical note by the authenticated doctor
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())

	patientID, err := types.ParseID(chi.URLParam(r, "patientID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid patient ID"))
		return
	}

	var req createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}
	if req.Type != NoteConsultation && req.Type != NotePrescription {
		writeError(w, errors.BadRequest("note_type must be consultation or prescription"))
		return
	}
	if req.Body == "" {
		writeError(w, errors.Validation("invalid note", map[string]string{"body": "body is required"}))
		return
	}

	n := &ClinicalNote{
		ID:        types.NewID(),
		DoctorID:  user.ID,
		PatientID: patientID,
		Type:      req.Type,
		Body:      req.Body,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.notes.Append(r.Context(), n); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, n)
}

// ListNotes returns the authenticated doctor's notes about a patient
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())

	patientID, err := types.ParseID(chi.URLParam(r, "patientID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid patient ID"))
		return
	}

	notes, err := h.notes.ForPatient(r.Context(), user.ID, patientID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  notes,
		"total": len(notes),
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
