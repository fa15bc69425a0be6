package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gamedb-go/internal/model"
	"github.com/mcoot/gamedb-go/internal/storage/storagetest"
	"github.com/mcoot/gamedb-go/internal/testutil"
)

type StorageSuite struct {
	storagetest.Suite
	dsn     string
	storage *Storage
}

func TestStorageSuite(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL integration test")
	}
	suite.Run(t, &StorageSuite{dsn: dsn})
}

func (s *StorageSuite) SetupTest() {
	s.Ctx = context.Background()

	cfg := DefaultConfig()
	cfg.DSN = s.dsn

	st, err := New(s.Ctx, cfg, testutil.NopLogger())
	s.Require().NoError(err)

	_, err = st.pool.Exec(s.Ctx, `TRUNCATE account_info, quest_progress, containers`)
	s.Require().NoError(err)

	s.storage = st
	s.Storage = st
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

func (s *StorageSuite) TestSchemaIsIdempotent() {
	s.NoError(s.storage.ensureSchema(s.Ctx))
}

func TestMapInsertError(t *testing.T) {
	t.Run("primary key", func(t *testing.T) {
		err := mapInsertError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: accountPrimaryKey})
		assert.ErrorIs(t, err, model.ErrUsernameTaken)
	})

	t.Run("email index", func(t *testing.T) {
		err := mapInsertError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: accountEmailIndex})
		assert.ErrorIs(t, err, model.ErrEmailTaken)
	})

	t.Run("other constraint", func(t *testing.T) {
		err := mapInsertError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "something_else"})
		assert.NotErrorIs(t, err, model.ErrUsernameTaken)
		assert.NotErrorIs(t, err, model.ErrEmailTaken)
	})

	t.Run("other error", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := mapInsertError(cause)
		assert.ErrorIs(t, err, cause)
	})
}
