package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/licitaciones-portal/internal/model"
)

// SnapshotRepository keeps the last full record fetched for each tender so
// the detail view can degrade to it when the remote API is down.
type SnapshotRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db, now: time.Now}
}

func (r *SnapshotRepository) Save(ctx context.Context, t model.Tender) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", t.ID, err)
	}
	region := t.Region
	if region == "" {
		region = model.RegionUnknown
	}
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO tender_snapshot (id, region_code, status, payload, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET region_code = EXCLUDED.region_code,
			status = EXCLUDED.status,
			payload = EXCLUDED.payload,
			fetched_at = EXCLUDED.fetched_at
	`, t.ID, string(region), string(t.Status), string(payload), r.now()).Error
}

// Get returns (nil, nil) when no snapshot exists.
func (r *SnapshotRepository) Get(ctx context.Context, id string) (*model.Tender, error) {
	var row struct {
		Payload   string
		FetchedAt time.Time
	}
	result := r.db.WithContext(ctx).Raw(`
		SELECT payload::text AS payload, fetched_at
		FROM tender_snapshot
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 || row.Payload == "" {
		return nil, nil
	}

	var t model.Tender
	if err := json.Unmarshal([]byte(row.Payload), &t); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	return &t, nil
}

// Count reports how many snapshots are stored.
func (r *SnapshotRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM tender_snapshot`).Scan(&count).Error
	return count, err
}
