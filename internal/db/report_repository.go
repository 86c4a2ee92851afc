package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/qiankun/internal/game/combat"
)

// ReportRepository archives terminal battle reports.
type ReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository creates a ReportRepository on the given pool.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: pool}
}

// StoredReport is one archived battle with its storage metadata.
type StoredReport struct {
	ID           int64          `json:"id"`
	SessionID    string         `json:"session_id"`
	Mode         string         `json:"mode"`
	Rounds       int            `json:"rounds"`
	Victory      bool           `json:"victory"`
	Escaped      bool           `json:"escaped"`
	Surrendered  bool           `json:"surrendered"`
	Canceled     bool           `json:"canceled"`
	Participants []string       `json:"participants"`
	CreatedAt    time.Time      `json:"created_at"`
	Report       *combat.Report `json:"report"`
}

// SaveReport archives one battle report with the heroes that fought in it.
// The outcome columns are denormalized for filtering; the full log lives in
// the jsonb payload.
func (r *ReportRepository) SaveReport(ctx context.Context, report *combat.Report, participants []string) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report %q: %w", report.SessionID, err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO battle_reports
		     (session_id, mode, rounds, victory, escaped, surrendered, canceled, report, participants)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		report.SessionID, report.Mode, report.Rounds,
		report.Victory, report.Escaped, report.Surrendered, report.Canceled,
		payload, participants)
	if err != nil {
		return fmt.Errorf("inserting report %q: %w", report.SessionID, err)
	}
	return nil
}

// RecentByHero returns the newest battles the named hero took part in.
func (r *ReportRepository) RecentByHero(ctx context.Context, name string, limit int) ([]StoredReport, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, session_id, mode, rounds, victory, escaped, surrendered, canceled,
		        report, participants, created_at
		 FROM battle_reports
		 WHERE $1 = ANY(participants)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`, name, limit)
	if err != nil {
		return nil, fmt.Errorf("querying reports of %q: %w", name, err)
	}
	defer rows.Close()

	var out []StoredReport
	for rows.Next() {
		var (
			sr      StoredReport
			payload []byte
		)
		if err := rows.Scan(&sr.ID, &sr.SessionID, &sr.Mode, &sr.Rounds,
			&sr.Victory, &sr.Escaped, &sr.Surrendered, &sr.Canceled,
			&payload, &sr.Participants, &sr.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning report of %q: %w", name, err)
		}
		if err := json.Unmarshal(payload, &sr.Report); err != nil {
			return nil, fmt.Errorf("decoding report %d: %w", sr.ID, err)
		}
		out = append(out, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading reports of %q: %w", name, err)
	}
	return out, nil
}
