package testutil

import (
	"database/sql"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/vytor/birdtalk/internal/db"
	"github.com/vytor/birdtalk/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// It is limited to one connection so every query sees the same database.
func NewTestDB(t *testing.T) *sql.DB {
	sqlDB, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(sqlDB), "failed to apply migrations")
	return sqlDB
}

// NewTestSqlx is NewTestDB wrapped for sqlx based repositories.
func NewTestSqlx(t *testing.T) *sqlx.DB {
	return sqlx.NewDb(NewTestDB(t), "sqlite3")
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// Birds returns n catalog birds with ids 1..n, each with one default sound.
func Birds(n int) []models.Bird {
	birds := make([]models.Bird, n)
	for i := range birds {
		id := uint64(i + 1)
		birds[i] = models.Bird{
			ID:             id,
			CommonName:     "Bird " + itoa(id),
			ScientificName: "Avis numerus" + itoa(id),
			Image:          "bird_images/" + itoa(id) + ".jpg",
			Sounds:         []models.Sound{{Path: "bird_sounds/" + itoa(id) + ".mp3", Default: true}},
		}
	}
	return birds
}

func itoa(v uint64) string {
	return strconv.FormatUint(v, 10)
}
