package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/gamedb-go/internal/dependencies/clock"
	"github.com/mcoot/gamedb-go/internal/model"
	"github.com/mcoot/gamedb-go/internal/storage"
	"github.com/mcoot/gamedb-go/internal/storeconn"
)

// ErrStoreUnavailable is returned by every operation when the store is not connected
var ErrStoreUnavailable = storeconn.ErrStoreUnavailable

// RejectCode is the token sent back to a player whose request was refused
type RejectCode string

const (
	RejectInvalidLogin RejectCode = "invalidlogin"
	RejectInvalidInput RejectCode = "invalidinput"
	RejectEmailExists  RejectCode = "emailexists"
	RejectUserExists   RejectCode = "userexists"
)

// Session is the player connection an operation acts for
type Session interface {
	Username() string
	Password() string
	Email() string
	// Reject refuses the request with a code the player sees
	Reject(code RejectCode)
	// Load hydrates the session with the account record
	Load(account *model.Account)
}

// StoreProvider hands out the store once it is connected
type StoreProvider interface {
	Store() (storage.Storage, error)
}

// VerificationError means the password check itself failed.
// It is never reported to the player as a rejected login.
type VerificationError struct {
	Username string
	Err      error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verifying password for %s: %v", e.Username, e.Err)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// Service owns login, registration and account administration
type Service struct {
	stores    StoreProvider
	passwords PasswordVerifier
	validator Validator
	clock     clock.Clock
	logger    *slog.Logger
}

// New creates a new account Service
func New(stores StoreProvider, passwords PasswordVerifier, validator Validator, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		stores:    stores,
		passwords: passwords,
		validator: validator,
		clock:     clock,
		logger:    logger,
	}
}

// store is the capability check run first by every operation
func (s *Service) store(op string) (storage.Storage, error) {
	st, err := s.stores.Store()
	if err != nil {
		s.logger.Warn("store unavailable", "op", op)
		return nil, ErrStoreUnavailable
	}
	return st, nil
}

// Login authenticates the session's credentials. Unknown users and wrong
// passwords are rejected with the same code.
func (s *Service) Login(ctx context.Context, sess Session) error {
	st, err := s.store("login")
	if err != nil {
		return err
	}

	username := sess.Username()
	account, err := st.GetAccount(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			s.logger.Debug("login rejected", "username", username, "reason", "unknown user")
			sess.Reject(RejectInvalidLogin)
			return nil
		}
		return fmt.Errorf("looking up account: %w", err)
	}

	// Records created by a position upsert carry no credentials
	if account.PasswordHash == "" {
		s.logger.Debug("login rejected", "username", username, "reason", "no password set")
		sess.Reject(RejectInvalidLogin)
		return nil
	}

	ok, err := s.passwords.Verify(account.PasswordHash, sess.Password())
	if err != nil {
		return &VerificationError{Username: username, Err: err}
	}
	if !ok {
		s.logger.Debug("login rejected", "username", username, "reason", "password mismatch")
		sess.Reject(RejectInvalidLogin)
		return nil
	}

	s.logger.Info("player logged in", "username", username)
	sess.Load(account)
	return nil
}

// Register admits a new account and hands it to the session. Nothing is
// written; the record is persisted by Commit.
func (s *Service) Register(ctx context.Context, sess Session) error {
	st, err := s.store("register")
	if err != nil {
		return err
	}

	candidate := Candidate{
		Username: sess.Username(),
		Password: sess.Password(),
		Email:    sess.Email(),
	}
	if err := s.validator.Validate(candidate); err != nil {
		s.logger.Debug("registration rejected", "username", candidate.Username, "reason", err)
		sess.Reject(RejectInvalidInput)
		return nil
	}

	// Email is checked first so it wins when both collide
	if candidate.Email != "" {
		taken, err := st.EmailExists(ctx, candidate.Email)
		if err != nil {
			return fmt.Errorf("checking email: %w", err)
		}
		if taken {
			sess.Reject(RejectEmailExists)
			return nil
		}
	}

	taken, err := st.AccountExists(ctx, candidate.Username)
	if err != nil {
		return fmt.Errorf("checking username: %w", err)
	}
	if taken {
		sess.Reject(RejectUserExists)
		return nil
	}

	hash, err := s.passwords.Hash(candidate.Password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	account := &model.Account{
		Username:     candidate.Username,
		PasswordHash: hash,
		Email:        candidate.Email,
		Rank:         model.RankPlayer,
		CreatedAt:    s.clock.Now().UTC(),
	}

	s.logger.Info("registration admitted", "username", account.Username)
	sess.Load(account)
	return nil
}

// Commit inserts an admitted account. A username or email claimed since
// admission comes back as a reject code rather than an error.
func (s *Service) Commit(ctx context.Context, account *model.Account) (RejectCode, error) {
	st, err := s.store("commit")
	if err != nil {
		return "", err
	}

	err = st.InsertAccount(ctx, account)
	switch {
	case err == nil:
		s.logger.Info("account created", "username", account.Username)
		return "", nil
	case errors.Is(err, model.ErrEmailTaken):
		s.logger.Warn("registration lost race", "username", account.Username, "conflict", "email")
		return RejectEmailExists, nil
	case errors.Is(err, model.ErrUsernameTaken):
		s.logger.Warn("registration lost race", "username", account.Username, "conflict", "username")
		return RejectUserExists, nil
	default:
		return "", fmt.Errorf("creating account: %w", err)
	}
}

// Exists reports whether an account with exactly this username exists
func (s *Service) Exists(ctx context.Context, username string) (bool, error) {
	st, err := s.store("exists")
	if err != nil {
		return false, err
	}
	return st.AccountExists(ctx, username)
}

// SetRank changes the rank of an existing account. Unknown usernames are
// logged and otherwise ignored.
func (s *Service) SetRank(ctx context.Context, username string, rank model.Rank) error {
	st, err := s.store("set_rank")
	if err != nil {
		return err
	}

	exists, err := st.AccountExists(ctx, username)
	if err != nil {
		return fmt.Errorf("looking up account: %w", err)
	}
	if !exists {
		s.logger.Warn("set rank on unknown account", "username", username, "rank", rank)
		return nil
	}

	if err := st.UpsertRank(ctx, username, rank); err != nil {
		return fmt.Errorf("updating rank: %w", err)
	}
	s.logger.Info("rank updated", "username", username, "rank", rank)
	return nil
}

// RegisteredCount returns the number of accounts
func (s *Service) RegisteredCount(ctx context.Context) (int64, error) {
	st, err := s.store("registered_count")
	if err != nil {
		return 0, err
	}
	return st.CountAccounts(ctx)
}

// SavePosition records a player's world position
func (s *Service) SavePosition(ctx context.Context, username string, pos model.Position) error {
	st, err := s.store("save_position")
	if err != nil {
		return err
	}
	if err := st.UpsertPosition(ctx, username, pos); err != nil {
		return fmt.Errorf("saving position: %w", err)
	}
	return nil
}
