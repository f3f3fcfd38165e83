package sqlite

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/vytor/birdtalk/internal/logger"
	"github.com/vytor/birdtalk/internal/models"
	"github.com/vytor/birdtalk/internal/repository"
)

var birdColumns = []string{"id", "common_name", "scientific_name", "image", "created_at"}

type soundRow struct {
	BirdID  uint64 `db:"bird_id"`
	Path    string `db:"path"`
	Default bool   `db:"is_default"`
}

type birdRepository struct {
	db *sqlx.DB
}

// NewBirdRepository creates a new BirdRepository implementation
func NewBirdRepository(db *sqlx.DB) repository.BirdRepository {
	return &birdRepository{db: db}
}

func (r *birdRepository) List(ctx context.Context) ([]models.Bird, error) {
	log := logger.FromContext(ctx).WithPrefix("bird_repo")
	log.Debug("listing birds")

	query, args, err := sqlBuilder.Select(birdColumns...).From("birds").OrderBy("id").ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	var birds []models.Bird
	if err := r.db.SelectContext(ctx, &birds, query, args...); err != nil {
		log.Error("failed to list birds: %v", err)
		return nil, err
	}
	if err := attachSounds(ctx, r.db, birds); err != nil {
		log.Error("failed to load sounds: %v", err)
		return nil, err
	}
	log.Debug("found %d birds", len(birds))
	return birds, nil
}

func (r *birdRepository) GetByIDs(ctx context.Context, ids []uint64) ([]models.Bird, error) {
	log := logger.FromContext(ctx).WithPrefix("bird_repo")
	log.Debug("getting %d birds by id", len(ids))
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlBuilder.Select(birdColumns...).
		From("birds").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	var birds []models.Bird
	if err := r.db.SelectContext(ctx, &birds, query, args...); err != nil {
		log.Error("failed to get birds: %v", err)
		return nil, err
	}
	if err := attachSounds(ctx, r.db, birds); err != nil {
		log.Error("failed to load sounds: %v", err)
		return nil, err
	}
	if len(birds) < len(ids) {
		log.Debug("%d of %d requested birds are unknown", len(ids)-len(birds), len(ids))
	}
	return birds, nil
}

func (r *birdRepository) Upsert(ctx context.Context, bird models.Bird) error {
	log := logger.FromContext(ctx).WithPrefix("bird_repo")
	log.Debug("upserting bird: id=%d, scientific_name=%s", bird.ID, bird.ScientificName)

	return txx(ctx, r.db, func(tx *sqlx.Tx) error {
		query, args, err := sqlBuilder.Insert("birds").
			Columns("id", "common_name", "scientific_name", "image").
			Values(bird.ID, bird.CommonName, bird.ScientificName, bird.Image).
			Suffix(`ON CONFLICT(id) DO UPDATE SET
    common_name = excluded.common_name,
    scientific_name = excluded.scientific_name,
    image = excluded.image`).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			log.Error("failed to upsert bird %d: %v", bird.ID, err)
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM bird_sounds WHERE bird_id = ?`, bird.ID); err != nil {
			log.Error("failed to clear sounds for bird %d: %v", bird.ID, err)
			return err
		}
		if len(bird.Sounds) == 0 {
			return nil
		}
		insert := sqlBuilder.Insert("bird_sounds").Columns("bird_id", "path", "is_default")
		for _, s := range bird.Sounds {
			insert = insert.Values(bird.ID, s.Path, s.Default)
		}
		query, args, err = insert.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			log.Error("failed to insert sounds for bird %d: %v", bird.ID, err)
			return err
		}
		return nil
	})
}

func (r *birdRepository) Count(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("bird_repo")

	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM birds`); err != nil {
		log.Error("failed to count birds: %v", err)
		return 0, err
	}
	return n, nil
}

func (r *birdRepository) RandomIDs(ctx context.Context, n int) ([]uint64, error) {
	log := logger.FromContext(ctx).WithPrefix("bird_repo")
	log.Debug("sampling %d random birds", n)

	var ids []uint64
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM birds ORDER BY RANDOM() LIMIT ?`, n); err != nil {
		log.Error("failed to sample birds: %v", err)
		return nil, err
	}
	return ids, nil
}

// attachSounds loads the sounds of birds in one query, default sounds first.
func attachSounds(ctx context.Context, q sqlx.QueryerContext, birds []models.Bird) error {
	if len(birds) == 0 {
		return nil
	}
	ids := make([]uint64, len(birds))
	index := make(map[uint64]int, len(birds))
	for i, b := range birds {
		ids[i] = b.ID
		index[b.ID] = i
	}

	query, args, err := sqlBuilder.Select("bird_id", "path", "is_default").
		From("bird_sounds").
		Where(squirrel.Eq{"bird_id": ids}).
		OrderBy("bird_id", "is_default DESC", "id").
		ToSql()
	if err != nil {
		return err
	}

	var rows []soundRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return err
	}
	for _, row := range rows {
		i := index[row.BirdID]
		birds[i].Sounds = append(birds[i].Sounds, models.Sound{Path: row.Path, Default: row.Default})
	}
	return nil
}
