package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/strokewatch/platform/internal/identity"
	"github.com/strokewatch/platform/internal/risk"
	"github.com/strokewatch/platform/internal/shared/auth"
	"github.com/strokewatch/platform/internal/shared/errors"
	"github.com/strokewatch/platform/internal/shared/types"
	"github.com/strokewatch/platform/internal/sharing"
)

// Handler provides HTTP handlers for dashboard views and the
// administrator policy controls
type Handler struct {
	service  *Service
	policy   *risk.Policy
	registry sharing.Registry
}

// NewHandler creates a new dashboard handler
func NewHandler(service *Service, policy *risk.Policy, registry sharing.Registry) *Handler {
	return &Handler{service: service, policy: policy, registry: registry}
}

// Routes registers the dashboard routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(auth.RequireRoles(string(identity.RolePatient))).Get("/report", h.MyReport)
	r.Get("/patients/{patientID}/report", h.PatientReport)

	r.With(auth.RequireRoles(string(identity.RoleCaregiver))).Get("/caregiver", h.Caregiver)
	r.With(auth.RequireRoles(string(identity.RoleDoctor))).Get("/panel", h.Panel)

	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireRoles(string(identity.RoleAdministrator)))
		r.Get("/", h.Admin)
		r.Get("/policy", h.GetPolicy)
		r.Put("/policy", h.UpdatePolicy)
	})

	return r
}

// MyReport returns the authenticated patient's personal health report
func (h *Handler) MyReport(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())

	report, err := h.service.Report(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// PatientReport returns a shared patient's report to a linked caregiver
// or doctor
func (h *Handler) PatientReport(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	patientID, err := types.ParseID(chi.URLParam(r, "patientID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid patient ID"))
		return
	}

	if user.ID != patientID {
		linked, err := h.isLinked(r, user.ID, patientID)
		if err != nil {
			writeError(w, err)
			return
		}
		if !linked {
			writeError(w, errors.Forbidden("patient has not shared data with you"))
			return
		}
	}

	report, err := h.service.Report(r.Context(), patientID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) isLinked(r *http.Request, viewerID, patientID types.ID) (bool, error) {
	links, err := h.registry.ForPatient(r.Context(), patientID)
	if err != nil {
		return false, err
	}
	for _, link := range links {
		if link.RecipientID == viewerID {
			return true, nil
		}
	}
	return false, nil
}

// Caregiver returns the authenticated caregiver's dashboard
func (h *Handler) Caregiver(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())

	dash, err := h.service.ForCaregiver(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dash)
}

// Panel returns the authenticated doctor's patient panel, most urgent
// first
func (h *Handler) Panel(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())

	panel, err := h.service.DoctorPanel(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  panel,
		"total": len(panel),
	})
}

// Admin returns the administrator's platform overview
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	dash, err := h.service.ForAdmin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dash)
}

type policyView struct {
	HighRiskThreshold   float64 `json:"high_risk_threshold"`
	MediumRiskThreshold float64 `json:"medium_risk_threshold"`
	RetestIntervalDays  int     `json:"retest_interval_days"`
}

// GetPolicy returns the current alerting policy
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	high, medium := h.policy.Thresholds()
	writeJSON(w, http.StatusOK, policyView{
		HighRiskThreshold:   high,
		MediumRiskThreshold: medium,
		RetestIntervalDays:  h.policy.RetestIntervalDays(),
	})
}

// UpdatePolicy updates the alerting thresholds and retest interval.
// Changes apply to future assessments only; history is never rescored.
func (h *Handler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	var req policyView
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	if err := h.policy.SetThresholds(req.HighRiskThreshold, req.MediumRiskThreshold); err != nil {
		writeError(w, err)
		return
	}
	if err := h.policy.SetRetestInterval(req.RetestIntervalDays); err != nil {
		writeError(w, err)
		return
	}

	high, medium := h.policy.Thresholds()
	writeJSON(w, http.StatusOK, policyView{
		HighRiskThreshold:   high,
		MediumRiskThreshold: medium,
		RetestIntervalDays:  h.policy.RetestIntervalDays(),
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
