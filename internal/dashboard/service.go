package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/strokewatch/platform/internal/alert"
	"github.com/strokewatch/platform/internal/analysis"
	"github.com/strokewatch/platform/internal/identity"
	"github.com/strokewatch/platform/internal/messaging"
	"github.com/strokewatch/platform/internal/record"
	"github.com/strokewatch/platform/internal/risk"
	"github.com/strokewatch/platform/internal/shared/types"
	"github.com/strokewatch/platform/internal/sharing"
)

// Service assembles role-specific dashboard views from the underlying
// stores. It only reads; all writes go through coordination.
type Service struct {
	users     identity.Repository
	records   record.Store
	history   risk.History
	policy    *risk.Policy
	registry  sharing.Registry
	alerts    alert.Store
	messenger *messaging.Service

	clock func() time.Time
}

// NewService creates a dashboard service
func NewService(
	users identity.Repository,
	records record.Store,
	history risk.History,
	policy *risk.Policy,
	registry sharing.Registry,
	alerts alert.Store,
	messenger *messaging.Service,
) *Service {
	return &Service{
		users:     users,
		records:   records,
		history:   history,
		policy:    policy,
		registry:  registry,
		alerts:    alerts,
		messenger: messenger,
		clock:     time.Now,
	}
}

// RiskSummary is the dashboard rendering of an assessment
type RiskSummary struct {
	Score           float64    `json:"score"`
	Level           risk.Level `json:"level"`
	Color           string     `json:"color"`
	AssessedAt      time.Time  `json:"timestamp"`
	Recommendations []string   `json:"recommendations"`
}

func summarize(a *risk.Assessment) *RiskSummary {
	if a == nil {
		return nil
	}
	return &RiskSummary{
		Score:           a.Score,
		Level:           a.Level,
		Color:           a.Level.Color(),
		AssessedAt:      a.AssessedAt,
		Recommendations: a.Recommendations,
	}
}

// PersonalReport is the patient's consolidated health view
type PersonalReport struct {
	PatientID          types.ID             `json:"patient_id"`
	Risk               *RiskSummary         `json:"risk,omitempty"`
	GlucoseTrend       analysis.TrendResult `json:"glucose_trend"`
	BMITrend           analysis.TrendResult `json:"bmi_trend"`
	AbnormalIndicators []string             `json:"abnormal_indicators"`
	RetestDue          bool                 `json:"retest_due"`
	SnapshotCount      int                  `json:"snapshot_count"`
}

// Report builds a patient's personal health report
func (s *Service) Report(ctx context.Context, patientID types.ID) (*PersonalReport, error) {
	snapshots, err := s.records.ForPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	latest, err := s.history.Latest(ctx, patientID)
	if err != nil {
		return nil, err
	}

	var latestSnapshot *record.Snapshot
	var last *time.Time
	if len(snapshots) > 0 {
		latestSnapshot = snapshots[len(snapshots)-1]
		last = &latestSnapshot.RecordedAt
	}

	indicators := analysis.AbnormalIndicators(latestSnapshot)
	if indicators == nil {
		indicators = []string{}
	}

	return &PersonalReport{
		PatientID:          patientID,
		Risk:               summarize(latest),
		GlucoseTrend:       analysis.Trend(snapshots, analysis.MetricGlucose),
		BMITrend:           analysis.Trend(snapshots, analysis.MetricBMI),
		AbnormalIndicators: indicators,
		RetestDue:          risk.RetestDue(last, s.policy.RetestIntervalDays(), s.clock().UTC()),
		SnapshotCount:      len(snapshots),
	}, nil
}

// PatientView is one monitored patient's entry on a caregiver or doctor
// dashboard
type PatientView struct {
	PatientID types.ID     `json:"patient_id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	LinkedAt  time.Time    `json:"linked_at"`
	Risk      *RiskSummary `json:"risk,omitempty"`
}

// MonitoredPatients returns the patients sharing data with a recipient,
// each with their latest assessment, in link order
func (s *Service) MonitoredPatients(ctx context.Context, recipientID types.ID) ([]*PatientView, error) {
	links, err := s.registry.ForRecipient(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	views := make([]*PatientView, 0, len(links))
	for _, link := range links {
		v := &PatientView{
			PatientID: link.PatientID,
			LinkedAt:  link.LinkedAt,
		}
		if u, err := s.users.Get(ctx, link.PatientID); err == nil {
			v.Name = u.Name
			v.Email = u.Email
		}

		latest, err := s.history.Latest(ctx, link.PatientID)
		if err != nil {
			return nil, err
		}
		v.Risk = summarize(latest)

		views = append(views, v)
	}
	return views, nil
}

// DoctorPanel returns a doctor's patients ordered by urgency: High
// before Medium before Low, unassessed patients last. The sort is
// stable, so patients within the same band keep their link order.
func (s *Service) DoctorPanel(ctx context.Context, doctorID types.ID) ([]*PatientView, error) {
	views, err := s.MonitoredPatients(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(views, func(i, j int) bool {
		return panelRank(views[i]) < panelRank(views[j])
	})
	return views, nil
}

func panelRank(v *PatientView) int {
	if v.Risk == nil {
		return risk.LevelUnknown.PanelRank()
	}
	return v.Risk.Level.PanelRank()
}

// CaregiverDashboard is the caregiver's home view
type CaregiverDashboard struct {
	Patients      []*PatientView `json:"patients"`
	UnreadAlerts  int            `json:"unread_alerts"`
	Notifications int            `json:"unread_notifications"`
}

// ForCaregiver builds a caregiver's dashboard
func (s *Service) ForCaregiver(ctx context.Context, caregiverID types.ID) (*CaregiverDashboard, error) {
	patients, err := s.MonitoredPatients(ctx, caregiverID)
	if err != nil {
		return nil, err
	}

	unreadAlerts, err := s.alerts.UnreadCount(ctx, caregiverID)
	if err != nil {
		return nil, err
	}

	_, notifications, err := s.messenger.UnreadCounts(ctx, caregiverID)
	if err != nil {
		return nil, err
	}

	return &CaregiverDashboard{
		Patients:      patients,
		UnreadAlerts:  unreadAlerts,
		Notifications: notifications,
	}, nil
}

// AdminDashboard is the administrator's platform overview
type AdminDashboard struct {
	UsersByRole        map[identity.Role]int `json:"users_by_role"`
	HighRiskThreshold  float64               `json:"high_risk_threshold"`
	MediumRiskThreshold float64               `json:"medium_risk_threshold"`
	RetestIntervalDays int                   `json:"retest_interval_days"`
}

// ForAdmin builds the administrator's overview
func (s *Service) ForAdmin(ctx context.Context) (*AdminDashboard, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	byRole := make(map[identity.Role]int)
	for _, u := range users {
		byRole[u.Role]++
	}

	high, medium := s.policy.Thresholds()
	return &AdminDashboard{
		UsersByRole:        byRole,
		HighRiskThreshold:  high,
		MediumRiskThreshold: medium,
		RetestIntervalDays: s.policy.RetestIntervalDays(),
	}, nil
}
