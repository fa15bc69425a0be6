package factory

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gamedb-go/internal/model"
	"github.com/mcoot/gamedb-go/internal/services/account"
	"github.com/mcoot/gamedb-go/internal/services/sweep"
	"github.com/mcoot/gamedb-go/internal/storage"
	"github.com/mcoot/gamedb-go/internal/storeconn"
	"github.com/mcoot/gamedb-go/internal/worker"
)

type playerSession struct {
	username, password, email string

	rejected account.RejectCode
	loaded   *model.Account
}

func (p *playerSession) Username() string { return p.username }
func (p *playerSession) Password() string { return p.password }
func (p *playerSession) Email() string    { return p.email }

func (p *playerSession) Reject(code account.RejectCode) {
	p.rejected = code
}

func (p *playerSession) Load(a *model.Account) {
	p.loaded = a
}

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.NoError(s.app.Close())
}

func (s *IntegrationSuite) register(username, password, email string) *model.Account {
	sess := &playerSession{username: username, password: password, email: email}
	s.Require().NoError(s.app.Accounts.Register(s.ctx, sess))
	s.Require().Empty(sess.rejected)
	s.Require().NotNil(sess.loaded)

	code, err := s.app.Accounts.Commit(s.ctx, sess.loaded)
	s.Require().NoError(err)
	s.Require().Empty(code)
	return sess.loaded
}

// Test: a player registers, logs in, gets promoted and is counted
func (s *IntegrationSuite) TestAccountLifecycle() {
	created := s.register("alice", "secret", "alice@example.com")
	s.Equal(s.app.MockClock.Now(), created.CreatedAt)

	login := &playerSession{username: "alice", password: "secret"}
	s.Require().NoError(s.app.Accounts.Login(s.ctx, login))
	s.Require().NotNil(login.loaded)
	s.Equal(model.RankPlayer, login.loaded.Rank)

	s.Require().NoError(s.app.Accounts.SetRank(s.ctx, "alice", model.RankModerator))
	stored, err := s.app.Store.GetAccount(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.RankModerator, stored.Rank)

	s.register("bob", "hunter2", "")
	count, err := s.app.Accounts.RegisteredCount(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(2), count)

	dup := &playerSession{username: "carol", password: "pw123", email: "alice@example.com"}
	s.Require().NoError(s.app.Accounts.Register(s.ctx, dup))
	s.Equal(account.RejectEmailExists, dup.rejected)
}

// Test: the worker runs both sweeps against registered players
func (s *IntegrationSuite) TestSweepsRepairRegisteredPlayers() {
	s.register("alice", "secret", "")
	s.Require().NoError(s.app.Accounts.SavePosition(s.ctx, "alice", model.Position{X: 3, Y: 4}))
	s.Require().NoError(s.app.Store.SaveQuestProgress(s.ctx, &model.QuestProgress{
		Username: "alice",
		Quests:   []model.QuestStage{{Key: model.TutorialQuestKey, Stage: 1}},
	}))
	s.Require().NoError(s.app.Store.SaveContainer(s.ctx, &model.Container{
		Kind:     model.ContainerBank,
		Username: "alice",
		Slots:    []model.Slot{{Key: "gold", Count: 9_000_000}, {Key: "logs", Count: 5}},
	}))

	reports := s.app.Worker.RunOnce(s.ctx)
	s.Require().Len(reports, 2)
	s.Equal(sweep.JobResetPositions, reports[0].Job)
	s.Equal(1, reports[0].Updated)
	s.Equal(1, reports[1].Cleared)

	stored, err := s.app.Store.GetAccount(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.Position{X: 128, Y: 96}, stored.Position())

	bank, err := s.app.Store.GetContainer(s.ctx, model.ContainerBank, "alice")
	s.Require().NoError(err)
	s.Equal([]model.Slot{model.EmptySlot(), {Key: "logs", Count: 5}}, bank.Slots)
}

// Test: nothing reaches the store before the connection resolves
func (s *IntegrationSuite) TestOperationsBeforeConnect() {
	app := NewUnconnectedTestApp()

	_, err := app.Accounts.Exists(s.ctx, "alice")
	s.ErrorIs(err, account.ErrStoreUnavailable)

	_, err = app.Sweeps.ResetPositions(s.ctx)
	s.ErrorIs(err, sweep.ErrStoreUnavailable)

	s.True(app.Connect(s.ctx).Ready())
	exists, err := app.Accounts.Exists(s.ctx, "alice")
	s.Require().NoError(err)
	s.False(exists)
}

func TestNewWithFailingDialer(t *testing.T) {
	dialErr := errors.New("connection refused")
	app, err := New(Config{
		Dialer: func(context.Context, storeconn.Config, string, *slog.Logger) (storage.Storage, error) {
			return nil, dialErr
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	outcome := app.Connect(context.Background())
	if outcome.Ready() {
		t.Fatal("expected connection to fail")
	}
	if !errors.Is(outcome.Err(), dialErr) {
		t.Fatalf("expected dial error, got %v", outcome.Err())
	}
	if _, err := app.Accounts.RegisteredCount(context.Background()); !errors.Is(err, account.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
}

func TestNewStartsSweepWorkerOnceConnected(t *testing.T) {
	app, err := New(Config{Sweep: worker.Config{Enabled: true, Interval: time.Hour}})
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	if app.Worker.IsRunning() {
		t.Fatal("worker started before connect")
	}
	if !app.Connect(context.Background()).Ready() {
		t.Fatal("memory store failed to connect")
	}
	if !app.Worker.IsRunning() {
		t.Fatal("worker not started after connect")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(Config{Sweep: worker.Config{Enabled: true}}); err == nil {
		t.Fatal("expected error for zero sweep interval")
	}
}
