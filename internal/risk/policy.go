package risk

import (
	"sync"

	"github.com/strokewatch/platform/internal/shared/config"
	"github.com/strokewatch/platform/internal/shared/errors"
)

// Level is the discrete risk band derived from a score
type Level string

const (
	LevelLow     Level = "Low"
	LevelMedium  Level = "Medium"
	LevelHigh    Level = "High"
	LevelUnknown Level = "Unknown"
)

// Color returns the display color for a level
func (l Level) Color() string {
	switch l {
	case LevelLow:
		return "green"
	case LevelMedium:
		return "yellow"
	case LevelHigh:
		return "red"
	default:
		return "gray"
	}
}

// PanelRank orders levels for doctor panels: High sorts before Medium,
// Medium before Low, Low before Unknown.
func (l Level) PanelRank() int {
	switch l {
	case LevelHigh:
		return 0
	case LevelMedium:
		return 1
	case LevelLow:
		return 2
	default:
		return 3
	}
}

// Policy holds the administrator-tunable alerting thresholds. A level is
// always derived from a score through LevelFor at the moment it is
// needed; it is never cached independently of the score.
type Policy struct {
	mu         sync.RWMutex
	high       float64
	medium     float64
	retestDays int
}

// NewPolicy creates a policy from configuration
func NewPolicy(cfg config.PolicyConfig) *Policy {
	return &Policy{
		high:       cfg.HighRiskThreshold,
		medium:     cfg.MediumRiskThreshold,
		retestDays: cfg.RetestIntervalDays,
	}
}

// LevelFor derives the risk level from a score
func (p *Policy) LevelFor(score float64) Level {
	p.mu.RLock()
	defer p.mu.RUnlock()

	switch {
	case score >= p.high:
		return LevelHigh
	case score >= p.medium:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Thresholds returns the current (high, medium) thresholds
func (p *Policy) Thresholds() (high, medium float64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.high, p.medium
}

// RetestIntervalDays returns the current retest interval
func (p *Policy) RetestIntervalDays() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.retestDays
}

// SetThresholds updates the risk thresholds. The high threshold must
// stay above the medium one.
func (p *Policy) SetThresholds(high, medium float64) error {
	if high <= medium {
		return errors.Validation("invalid thresholds", map[string]string{
			"high": "high threshold must be greater than medium threshold",
		})
	}
	if medium < 0 || high > 100 {
		return errors.Validation("invalid thresholds", map[string]string{
			"range": "thresholds must lie within [0,100]",
		})
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.high = high
	p.medium = medium
	return nil
}

// SetRetestInterval updates the retest interval in days
func (p *Policy) SetRetestInterval(days int) error {
	if days <= 0 {
		return errors.Validation("invalid retest interval", map[string]string{
			"retest_interval_days": "must be positive",
		})
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.retestDays = days
	return nil
}
