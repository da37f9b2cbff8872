package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/samirrijal/camslew/internal/core/domain"
)

// SlewHistoryRepo implements ports.SlewHistoryRepository with pgx.
type SlewHistoryRepo struct {
	db *DB
}

// NewSlewHistoryRepo creates a new SlewHistoryRepo.
func NewSlewHistoryRepo(db *DB) *SlewHistoryRepo {
	return &SlewHistoryRepo{db: db}
}

// Insert stores rec. Re-inserting the same ID is a no-op, so the API and the
// event recorder may both write a record.
func (r *SlewHistoryRepo) Insert(ctx context.Context, rec *domain.SlewRecord) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO slew_history (id, session_id, camera_id, camera_name, reference, target,
		                          previous_azimuth, azimuth, candidates, distance_m, committed_at)
		VALUES ($1, $2, $3, $4,
		        ST_SetSRID(ST_MakePoint($5, $6), 4326),
		        ST_SetSRID(ST_MakePoint($7, $8), 4326),
		        $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING
	`, rec.ID, rec.SessionID, string(rec.CameraID), rec.CameraName,
		rec.Reference.Lon, rec.Reference.Lat,
		rec.Target.Lon, rec.Target.Lat,
		rec.PreviousAzimuth, rec.Azimuth, rec.Candidates, rec.DistanceMeters, rec.CommittedAt)
	if err != nil {
		return classifyInsertErr(rec.ID, err)
	}
	return nil
}

// classifyInsertErr marks data exceptions (SQLSTATE class 22) and integrity
// violations (class 23) as domain.ErrRecordRejected: retrying the same record
// cannot succeed.
func classifyInsertErr(id string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (strings.HasPrefix(pgErr.Code, "22") || strings.HasPrefix(pgErr.Code, "23")) {
		return fmt.Errorf("insert slew %s: %w: %w", id, domain.ErrRecordRejected, err)
	}
	return fmt.Errorf("insert slew %s: %w", id, err)
}

// ListByCamera returns the most recent slews for a camera, newest first.
func (r *SlewHistoryRepo) ListByCamera(ctx context.Context, cameraID domain.CameraID, limit int) ([]domain.SlewRecord, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id::text, session_id, camera_id, camera_name,
		       ST_Y(reference::geometry), ST_X(reference::geometry),
		       ST_Y(target::geometry), ST_X(target::geometry),
		       previous_azimuth, azimuth, candidates, distance_m, committed_at
		FROM slew_history
		WHERE camera_id = $1
		ORDER BY committed_at DESC
		LIMIT $2
	`, string(cameraID), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SlewRecord
	for rows.Next() {
		var rec domain.SlewRecord
		var camID string
		if err := rows.Scan(
			&rec.ID, &rec.SessionID, &camID, &rec.CameraName,
			&rec.Reference.Lat, &rec.Reference.Lon,
			&rec.Target.Lat, &rec.Target.Lon,
			&rec.PreviousAzimuth, &rec.Azimuth, &rec.Candidates, &rec.DistanceMeters, &rec.CommittedAt,
		); err != nil {
			return nil, err
		}
		rec.CameraID = domain.CameraID(camID)
		out = append(out, rec)
	}
	return out, rows.Err()
}
