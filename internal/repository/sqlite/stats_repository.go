package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/vytor/birdtalk/internal/logger"
	"github.com/vytor/birdtalk/internal/models"
	"github.com/vytor/birdtalk/internal/progress"
	"github.com/vytor/birdtalk/internal/repository"
)

type statsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new StatsRepository implementation
func NewStatsRepository(db *sql.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Load(ctx context.Context, profileID int64) (*models.UserStats, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("loading stats: profile_id=%d", profileID)

	query, args, err := sqlBuilder.Select("data", "version", "updated_at").
		From("user_stats").
		Where(squirrel.Eq{"profile_id": profileID}).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	var (
		data  string
		stats = models.UserStats{ProfileID: profileID}
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&data, &stats.Version, &stats.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no stats stored yet: profile_id=%d", profileID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to load stats: %v", err)
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &stats.Snapshot); err != nil {
		log.Error("failed to decode stats for profile %d: %v", profileID, err)
		return nil, err
	}
	return &stats, nil
}

func (r *statsRepository) Save(ctx context.Context, profileID int64, snap progress.Snapshot, version int64) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("saving stats: profile_id=%d, version=%d", profileID, version)

	data, err := json.Marshal(snap)
	if err != nil {
		log.Error("failed to encode stats: %v", err)
		return false, err
	}

	query, args, err := sqlBuilder.Insert("user_stats").
		Columns("profile_id", "data", "version", "updated_at").
		Values(profileID, string(data), version, time.Now().UTC()).
		Suffix(`ON CONFLICT(profile_id) DO UPDATE SET
    data = excluded.data,
    version = excluded.version,
    updated_at = excluded.updated_at
WHERE excluded.version > user_stats.version`).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return false, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to save stats: %v", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		log.Debug("stale stats ignored: profile_id=%d, version=%d", profileID, version)
		return false, nil
	}
	return true, nil
}
