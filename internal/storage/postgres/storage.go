package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcoot/gamedb-go/internal/model"
	"github.com/mcoot/gamedb-go/internal/storage"
)

// Constraint names surfaced on unique violations
const (
	accountPrimaryKey = "account_info_pkey"
	accountEmailIndex = "account_info_email_key"
)

const uniqueViolation = "23505"

// Config holds PostgreSQL pool settings
type Config struct {
	// DSN is a postgres:// connection string
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	ConnectTimeout  time.Duration
}

// DefaultConfig returns sensible defaults for PostgreSQL configuration
func DefaultConfig() Config {
	return Config{
		DSN:             "postgres://localhost:5432/gamedb?sslmode=disable",
		MaxConns:        10,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		ConnectTimeout:  5 * time.Second,
	}
}

// Storage is a PostgreSQL-backed implementation of the storage interface
type Storage struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New opens a connection pool, verifies it and ensures the schema exists
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Storage, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	if cfg.ConnectTimeout > 0 {
		poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Storage{pool: pool, logger: logger}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// ensureSchema creates the collections if they are missing
func (s *Storage) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS account_info (
			username      TEXT PRIMARY KEY,
			password      TEXT NOT NULL DEFAULT '',
			email         TEXT NOT NULL DEFAULT '',
			rank          INT NOT NULL DEFAULT 0,
			x             DOUBLE PRECISION NOT NULL DEFAULT 0,
			y             DOUBLE PRECISION NOT NULL DEFAULT 0,
			creation_time TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS account_info_email_key ON account_info(email) WHERE email <> ''`,
		`CREATE TABLE IF NOT EXISTS quest_progress (
			username TEXT PRIMARY KEY,
			quests   JSONB NOT NULL DEFAULT '[]'
		)`,
		`CREATE TABLE IF NOT EXISTS containers (
			kind     TEXT NOT NULL,
			username TEXT NOT NULL,
			slots    JSONB NOT NULL DEFAULT '[]',
			PRIMARY KEY (kind, username)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	s.logger.Debug("database schema ready")
	return nil
}

// Close closes the connection pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks the database is reachable
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

const accountColumns = `username, password, email, rank, x, y, creation_time`

func (s *Storage) GetAccount(ctx context.Context, username string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM account_info WHERE username = $1`

	account, err := scanAccount(s.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAccountNotFound
		}
		return nil, fmt.Errorf("getting account: %w", err)
	}
	return account, nil
}

func (s *Storage) AccountExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM account_info WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking account: %w", err)
	}
	return exists, nil
}

func (s *Storage) EmailExists(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM account_info WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking email: %w", err)
	}
	return exists, nil
}

func (s *Storage) InsertAccount(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO account_info (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.pool.Exec(ctx, query,
		account.Username,
		account.PasswordHash,
		account.Email,
		int(account.Rank),
		account.X,
		account.Y,
		account.CreatedAt,
	)
	if err != nil {
		return mapInsertError(err)
	}
	return nil
}

func (s *Storage) UpsertRank(ctx context.Context, username string, rank model.Rank) error {
	query := `
		INSERT INTO account_info (username, rank)
		VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET rank = EXCLUDED.rank
	`
	if _, err := s.pool.Exec(ctx, query, username, int(rank)); err != nil {
		return fmt.Errorf("upserting rank: %w", err)
	}
	return nil
}

func (s *Storage) UpsertPosition(ctx context.Context, username string, pos model.Position) error {
	query := `
		INSERT INTO account_info (username, x, y)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE SET x = EXCLUDED.x, y = EXCLUDED.y
	`
	if _, err := s.pool.Exec(ctx, query, username, pos.X, pos.Y); err != nil {
		return fmt.Errorf("upserting position: %w", err)
	}
	return nil
}

func (s *Storage) CountAccounts(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM account_info`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting accounts: %w", err)
	}
	return count, nil
}

func (s *Storage) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM account_info ORDER BY username`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*model.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	return accounts, nil
}

// Quest progress operations

func (s *Storage) GetQuestProgress(ctx context.Context, username string) (*model.QuestProgress, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT quests FROM quest_progress WHERE username = $1`, username).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrQuestProgressNotFound
		}
		return nil, fmt.Errorf("getting quest progress: %w", err)
	}

	progress := &model.QuestProgress{Username: username}
	if err := json.Unmarshal(raw, &progress.Quests); err != nil {
		return nil, fmt.Errorf("decoding quest progress: %w", err)
	}
	return progress, nil
}

func (s *Storage) SaveQuestProgress(ctx context.Context, progress *model.QuestProgress) error {
	quests := progress.Quests
	if quests == nil {
		quests = []model.QuestStage{}
	}
	raw, err := json.Marshal(quests)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO quest_progress (username, quests)
		VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET quests = EXCLUDED.quests
	`
	if _, err := s.pool.Exec(ctx, query, progress.Username, raw); err != nil {
		return fmt.Errorf("saving quest progress: %w", err)
	}
	return nil
}

// Container operations

func (s *Storage) ListContainers(ctx context.Context, kind model.ContainerKind) ([]*model.Container, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownContainerKind, kind)
	}

	rows, err := s.pool.Query(ctx, `SELECT username, slots FROM containers WHERE kind = $1 ORDER BY username`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("listing containers: %w", err)
	}
	defer rows.Close()

	containers := []*model.Container{}
	for rows.Next() {
		c := &model.Container{Kind: kind}
		var raw []byte
		if err := rows.Scan(&c.Username, &raw); err != nil {
			return nil, fmt.Errorf("scanning container: %w", err)
		}
		if c.Slots, err = decodeSlots(raw); err != nil {
			return nil, fmt.Errorf("decoding %s container for %s: %w", kind, c.Username, err)
		}
		containers = append(containers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing containers: %w", err)
	}
	return containers, nil
}

func (s *Storage) GetContainer(ctx context.Context, kind model.ContainerKind, username string) (*model.Container, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownContainerKind, kind)
	}

	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT slots FROM containers WHERE kind = $1 AND username = $2`, string(kind), username).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrContainerNotFound
		}
		return nil, fmt.Errorf("getting container: %w", err)
	}

	slots, err := decodeSlots(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s container for %s: %w", kind, username, err)
	}
	return &model.Container{Kind: kind, Username: username, Slots: slots}, nil
}

func (s *Storage) SaveContainer(ctx context.Context, container *model.Container) error {
	if !container.Kind.Valid() {
		return fmt.Errorf("%w: %q", model.ErrUnknownContainerKind, container.Kind)
	}

	slots := container.Slots
	if slots == nil {
		slots = []model.Slot{}
	}
	raw, err := json.Marshal(slots)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO containers (kind, username, slots)
		VALUES ($1, $2, $3)
		ON CONFLICT (kind, username) DO UPDATE SET slots = EXCLUDED.slots
	`
	if _, err := s.pool.Exec(ctx, query, string(container.Kind), container.Username, raw); err != nil {
		return fmt.Errorf("saving container: %w", err)
	}
	return nil
}

func scanAccount(row pgx.Row) (*model.Account, error) {
	var (
		account model.Account
		rank    int
	)
	err := row.Scan(
		&account.Username,
		&account.PasswordHash,
		&account.Email,
		&rank,
		&account.X,
		&account.Y,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	account.Rank = model.Rank(rank)
	account.CreatedAt = account.CreatedAt.UTC()
	return &account, nil
}

func decodeSlots(raw []byte) ([]model.Slot, error) {
	slots := []model.Slot{}
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// mapInsertError turns unique violations into the storage sentinel errors
func mapInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case accountPrimaryKey:
			return model.ErrUsernameTaken
		case accountEmailIndex:
			return model.ErrEmailTaken
		}
	}
	return fmt.Errorf("inserting account: %w", err)
}
