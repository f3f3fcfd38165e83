package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"cloud.google.com/go/civil"
	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/vytor/birdtalk/internal/logger"
	"github.com/vytor/birdtalk/internal/models"
	"github.com/vytor/birdtalk/internal/repository"
)

type packRow struct {
	ID          uint64         `db:"id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	Day         sql.NullString `db:"day"`
}

func (row packRow) toModel() (models.BirdPack, error) {
	p := models.BirdPack{ID: row.ID, Name: row.Name, Description: row.Description}
	if row.Day.Valid {
		d, err := civil.ParseDate(row.Day.String)
		if err != nil {
			return p, err
		}
		p.Day = &d
	}
	return p, nil
}

var packSelect = sqlBuilder.Select("id", "name", "description", "day").From("bird_packs")

type packRepository struct {
	db *sqlx.DB
}

// NewPackRepository creates a new PackRepository implementation
func NewPackRepository(db *sqlx.DB) repository.PackRepository {
	return &packRepository{db: db}
}

func (r *packRepository) List(ctx context.Context) ([]models.BirdPack, error) {
	log := logger.FromContext(ctx).WithPrefix("pack_repo")
	log.Debug("listing packs")

	query, args, err := packSelect.OrderBy("id").ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	var rows []packRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		log.Error("failed to list packs: %v", err)
		return nil, err
	}

	packs := make([]models.BirdPack, 0, len(rows))
	for _, row := range rows {
		p, err := row.toModel()
		if err != nil {
			log.Error("invalid day on pack %d: %v", row.ID, err)
			return nil, err
		}
		packs = append(packs, p)
	}
	log.Debug("found %d packs", len(packs))
	return packs, nil
}

func (r *packRepository) GetByID(ctx context.Context, id uint64) (*models.BirdPack, error) {
	log := logger.FromContext(ctx).WithPrefix("pack_repo")
	log.Debug("getting pack: id=%d", id)
	return r.getOne(ctx, log, packSelect.Where(squirrel.Eq{"id": id}), true)
}

func (r *packRepository) GetByDay(ctx context.Context, day civil.Date) (*models.BirdPack, error) {
	log := logger.FromContext(ctx).WithPrefix("pack_repo")
	log.Debug("getting pack of the day: day=%s", day)
	return r.getOne(ctx, log, packSelect.Where(squirrel.Eq{"day": day.String()}), true)
}

func (r *packRepository) FindByName(ctx context.Context, name string) (*models.BirdPack, error) {
	log := logger.FromContext(ctx).WithPrefix("pack_repo")
	log.Debug("finding pack by name: %s", name)
	return r.getOne(ctx, log, packSelect.Where(squirrel.Eq{"name": name}).OrderBy("id").Limit(1), false)
}

func (r *packRepository) getOne(ctx context.Context, log *logger.Logger, q squirrel.SelectBuilder, withBirds bool) (*models.BirdPack, error) {
	query, args, err := q.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	var row packRow
	err = r.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("pack not found")
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get pack: %v", err)
		return nil, err
	}

	p, err := row.toModel()
	if err != nil {
		log.Error("invalid day on pack %d: %v", row.ID, err)
		return nil, err
	}
	if withBirds {
		if p.Birds, err = r.packBirds(ctx, p.ID); err != nil {
			log.Error("failed to load birds for pack %d: %v", p.ID, err)
			return nil, err
		}
	}
	return &p, nil
}

func (r *packRepository) packBirds(ctx context.Context, packID uint64) ([]models.Bird, error) {
	query, args, err := sqlBuilder.
		Select("b.id", "b.common_name", "b.scientific_name", "b.image", "b.created_at").
		From("bird_pack_birds pb").
		Join("birds b ON b.id = pb.bird_id").
		Where(squirrel.Eq{"pb.pack_id": packID}).
		OrderBy("pb.position").
		ToSql()
	if err != nil {
		return nil, err
	}

	var birds []models.Bird
	if err := r.db.SelectContext(ctx, &birds, query, args...); err != nil {
		return nil, err
	}
	if err := attachSounds(ctx, r.db, birds); err != nil {
		return nil, err
	}
	return birds, nil
}

func (r *packRepository) Create(ctx context.Context, pack models.BirdPack) (uint64, error) {
	log := logger.FromContext(ctx).WithPrefix("pack_repo")
	log.Debug("creating pack: name=%s, birds=%d", pack.Name, len(pack.Birds))

	var day any
	if pack.Day != nil {
		day = pack.Day.String()
	}

	var id uint64
	err := txx(ctx, r.db, func(tx *sqlx.Tx) error {
		query, args, err := sqlBuilder.Insert("bird_packs").
			Columns("name", "description", "day").
			Values(pack.Name, pack.Description, day).
			ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			log.Error("failed to insert pack: %v", err)
			return err
		}
		lastID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		id = uint64(lastID)

		if len(pack.Birds) == 0 {
			return nil
		}
		insert := sqlBuilder.Insert("bird_pack_birds").Columns("pack_id", "bird_id", "position")
		for pos, b := range pack.Birds {
			insert = insert.Values(id, b.ID, pos)
		}
		query, args, err = insert.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			log.Error("failed to link birds to pack %d: %v", id, err)
			return err
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.Debug("pack created: id=%d", id)
	return id, nil
}
