package coordination

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/strokewatch/platform/internal/fast"
	"github.com/strokewatch/platform/internal/identity"
	"github.com/strokewatch/platform/internal/record"
	"github.com/strokewatch/platform/internal/risk"
	"github.com/strokewatch/platform/internal/shared/auth"
	"github.com/strokewatch/platform/internal/shared/errors"
	"github.com/strokewatch/platform/internal/shared/types"
	"github.com/strokewatch/platform/internal/sharing"
)

// Handler provides HTTP handlers for the care workflows
type Handler struct {
	service  *Service
	records  record.Store
	history  risk.History
	screens  fast.Store
	registry sharing.Registry
}

// NewHandler creates a new coordination handler
func NewHandler(service *Service, records record.Store, history risk.History, screens fast.Store, registry sharing.Registry) *Handler {
	return &Handler{
		service:  service,
		records:  records,
		history:  history,
		screens:  screens,
		registry: registry,
	}
}

// Routes registers the care workflow routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(auth.RequireRoles(string(identity.RolePatient))).Post("/health-data", h.SubmitHealthData)
	r.With(auth.RequireRoles(string(identity.RolePatient))).Post("/fast-test", h.PerformFASTTest)
	r.With(auth.RequireRoles(string(identity.RolePatient))).Post("/share", h.Share)
	r.With(auth.RequireRoles(string(identity.RolePatient))).Get("/sharing", h.ListShares)
	r.With(auth.RequireRoles(string(identity.RolePatient))).Get("/retest-due", h.RetestDue)

	r.Get("/patients/{patientID}/snapshots", h.ListSnapshots)
	r.Get("/patients/{patientID}/assessments", h.ListAssessments)
	r.Get("/patients/{patientID}/fast-results", h.ListFASTResults)

	r.With(auth.RequireRoles(string(identity.RoleAdministrator))).Post("/reminders/retest", h.SendRetestReminders)

	return r
}

// SubmitHealthData records a snapshot for the authenticated patient and
// returns the resulting assessment
func (h *Handler) SubmitHealthData(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())

	var in SnapshotInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	snapshot, assessment, err := h.service.SubmitSnapshot(r.Context(), user.ID, in, "manual")
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"snapshot":   snapshot,
		"assessment": assessment,
		"color":      assessment.Level.Color(),
	})
}

type fastTestRequest struct {
	Face   bool `json:"face"`
	Arm    bool `json:"arm"`
	Speech bool `json:"speech"`
}

// PerformFASTTest records a FAST screen for the authenticated patient
func (h *Handler) PerformFASTTest(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())

	var req fastTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	result, err := h.service.PerformFASTScreen(r.Context(), user.ID, req.Face, req.Arm, req.Speech)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"result": result,
		"advice": result.Advice(),
	})
}

type shareRequest struct {
	RecipientID types.ID `json:"recipient_id"`
}

// Share links the authenticated patient to a caregiver or doctor
func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())

	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}
	if req.RecipientID.IsZero() {
		writeError(w, errors.Validation("invalid share", map[string]string{
			"recipient_id": "recipient is required",
		}))
		return
	}

	link, created, err := h.service.ShareWith(r.Context(), user.ID, req.RecipientID)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{
		"link":    link,
		"created": created,
	})
}

// ListShares returns the authenticated patient's outbound sharing links
func (h *Handler) ListShares(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())

	links, err := h.registry.ForPatient(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  links,
		"total": len(links),
	})
}

// RetestDue reports whether the authenticated patient should submit new
// health data
func (h *Handler) RetestDue(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())

	due, err := h.service.RetestDue(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"retest_due": due})
}

// ListSnapshots returns a patient's snapshot history, gated by sharing
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	patientID, ok := h.authorizePatientRead(w, r)
	if !ok {
		return
	}

	snapshots, err := h.records.ForPatient(r.Context(), patientID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  snapshots,
		"total": len(snapshots),
	})
}

// ListAssessments returns a patient's assessment history, gated by
// sharing
func (h *Handler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	patientID, ok := h.authorizePatientRead(w, r)
	if !ok {
		return
	}

	assessments, err := h.history.ForPatient(r.Context(), patientID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  assessments,
		"total": len(assessments),
	})
}

// ListFASTResults returns a patient's FAST screen history, gated by
// sharing
func (h *Handler) ListFASTResults(w http.ResponseWriter, r *http.Request) {
	patientID, ok := h.authorizePatientRead(w, r)
	if !ok {
		return
	}

	results, err := h.screens.ForPatient(r.Context(), patientID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  results,
		"total": len(results),
	})
}

// SendRetestReminders triggers retest reminders for all overdue
// patients
func (h *Handler) SendRetestReminders(w http.ResponseWriter, r *http.Request) {
	sent, err := h.service.SendRetestReminders(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"reminders_sent": sent})
}

// authorizePatientRead parses the patient ID from the URL and checks
// the viewer's access
func (h *Handler) authorizePatientRead(w http.ResponseWriter, r *http.Request) (types.ID, bool) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, errors.Unauthorized("authentication required"))
		return "", false
	}

	patientID, err := types.ParseID(chi.URLParam(r, "patientID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid patient ID"))
		return "", false
	}

	allowed, err := h.service.CanView(r.Context(), user.ID, patientID)
	if err != nil {
		writeError(w, err)
		return "", false
	}
	if !allowed {
		writeError(w, errors.Forbidden("patient has not shared data with you"))
		return "", false
	}
	return patientID, true
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
