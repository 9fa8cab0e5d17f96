package his

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "github.com/denisenkom/go-mssqldb" // SQL Server driver
	"github.com/strokewatch/platform/internal/coordination"
	"github.com/strokewatch/platform/internal/identity"
	"github.com/strokewatch/platform/internal/shared/config"
	"github.com/strokewatch/platform/internal/shared/types"
)

// Adapter imports patient metrics from a legacy hospital information
// system (SQL Server). It polls the metrics table and submits each new
// row through the regular snapshot pipeline, so imported data is scored
// and alerted exactly like patient-entered data.
type Adapter struct {
	cfg    config.HISConfig
	users  identity.Repository
	submit SubmitFunc

	db       *sql.DB
	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	lastPoll time.Time
	wg       sync.WaitGroup
}

// SubmitFunc submits one imported snapshot for a patient
type SubmitFunc func(ctx context.Context, patientID types.ID, in coordination.SnapshotInput, source string) error

// New creates a hospital system adapter
func New(cfg config.HISConfig, users identity.Repository, submit SubmitFunc) *Adapter {
	return &Adapter{cfg: cfg, users: users, submit: submit}
}

// Start connects to the hospital database and begins polling
func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return fmt.Errorf("adapter already running")
	}

	db, err := sql.Open("sqlserver", a.cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to open hospital database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping hospital database: %w", err)
	}

	a.db = db
	a.running = true
	a.lastPoll = time.Now().Add(-a.cfg.PollInterval)

	pollCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.wg.Add(1)
	go a.pollLoop(pollCtx)

	return nil
}

// Stop stops polling and closes the connection
func (a *Adapter) Stop(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return nil
	}

	if a.cancel != nil {
		a.cancel()
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if a.db != nil {
		a.db.Close()
	}
	a.running = false
	return nil
}

// Health checks hospital database connectivity
func (a *Adapter) Health(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return fmt.Errorf("adapter not running")
	}
	return a.db.PingContext(ctx)
}

func (a *Adapter) pollLoop(ctx context.Context) {
	defer a.wg.Done()

	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.poll(ctx); err != nil {
				log.Printf("Hospital import poll failed: %v", err)
			}
		}
	}
}

// metricRow is one row of the hospital metrics table
type metricRow struct {
	Email        string
	RecordedAt   time.Time
	Age          int
	Hypertension bool
	HeartDisease bool
	Glucose      sql.NullFloat64
	BMI          sql.NullFloat64
	Smoking      sql.NullString
}

func (a *Adapter) poll(ctx context.Context) error {
	a.mu.Lock()
	since := a.lastPoll
	a.lastPoll = time.Now()
	a.mu.Unlock()

	query := fmt.Sprintf(`
		SELECT
			PatientEmail,
			RecordedAt,
			Age,
			Hypertension,
			HeartDisease,
			AvgGlucoseLevel,
			BMI,
			SmokingStatus
		FROM %s
		WHERE RecordedAt > @since
		ORDER BY RecordedAt
	`, a.cfg.MetricsTable)

	rows, err := a.db.QueryContext(ctx, query, sql.Named("since", since))
	if err != nil {
		return fmt.Errorf("failed to query metrics table: %w", err)
	}
	defer rows.Close()

	imported := 0
	for rows.Next() {
		var row metricRow
		if err := rows.Scan(
			&row.Email, &row.RecordedAt, &row.Age,
			&row.Hypertension, &row.HeartDisease,
			&row.Glucose, &row.BMI, &row.Smoking,
		); err != nil {
			return fmt.Errorf("failed to scan metrics row: %w", err)
		}

		if err := a.importRow(ctx, row); err != nil {
			log.Printf("Failed to import metrics for %s: %v", row.Email, err)
			continue
		}
		imported++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if imported > 0 {
		log.Printf("Imported %d patient metric rows from hospital system", imported)
	}
	return nil
}

// importRow matches the hospital row to a registered patient by email
// and submits it as a snapshot. Rows for unknown emails are skipped.
func (a *Adapter) importRow(ctx context.Context, row metricRow) error {
	u, err := a.users.GetByEmail(ctx, row.Email)
	if err != nil {
		return fmt.Errorf("no registered patient for email")
	}
	if u.Role != identity.RolePatient {
		return fmt.Errorf("account is not a patient")
	}

	in := coordination.SnapshotInput{
		Age:          row.Age,
		Hypertension: row.Hypertension,
		HeartDisease: row.HeartDisease,
	}
	if row.Glucose.Valid {
		g := row.Glucose.Float64
		in.AvgGlucoseLevel = &g
	}
	if row.BMI.Valid {
		b := row.BMI.Float64
		in.BMI = &b
	}
	if row.Smoking.Valid {
		in.SmokingStatus = row.Smoking.String
	}

	return a.submit(ctx, u.ID, in, "his")
}
