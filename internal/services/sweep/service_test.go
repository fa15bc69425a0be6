package sweep

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gamedb-go/internal/content"
	"github.com/mcoot/gamedb-go/internal/dependencies/mocks"
	"github.com/mcoot/gamedb-go/internal/model"
	"github.com/mcoot/gamedb-go/internal/storage"
	"github.com/mcoot/gamedb-go/internal/storage/memory"
	"github.com/mcoot/gamedb-go/internal/testutil"
)

type staticProvider struct {
	store storage.Storage
}

func (p *staticProvider) Store() (storage.Storage, error) {
	if p.store == nil {
		return nil, ErrStoreUnavailable
	}
	return p.store, nil
}

// flakyStore fails writes for one username
type flakyStore struct {
	storage.Storage
	failFor string
}

var errWriteFailed = errors.New("write failed")

func (f *flakyStore) UpsertPosition(ctx context.Context, username string, pos model.Position) error {
	if username == f.failFor {
		return errWriteFailed
	}
	return f.Storage.UpsertPosition(ctx, username, pos)
}

func (f *flakyStore) SaveContainer(ctx context.Context, c *model.Container) error {
	if c.Username == f.failFor {
		return errWriteFailed
	}
	return f.Storage.SaveContainer(ctx, c)
}

type ServiceSuite struct {
	suite.Suite
	storage  *memory.Storage
	provider *staticProvider
	content  content.Content
	clock    *mocks.MockClock
	service  *Service
	ctx      context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.provider = &staticProvider{store: s.storage}
	s.content = content.Default()
	s.content.DefaultSpawn = "500,400"
	s.content.TutorialSpawn = "10,20"
	s.clock = mocks.NewMockClock(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	s.service = New(s.provider, s.content, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) addAccount(username string, pos model.Position) {
	s.Require().NoError(s.storage.InsertAccount(s.ctx, &model.Account{Username: username, X: pos.X, Y: pos.Y}))
}

func (s *ServiceSuite) setTutorialStage(username string, stage int) {
	s.Require().NoError(s.storage.SaveQuestProgress(s.ctx, &model.QuestProgress{
		Username: username,
		Quests:   []model.QuestStage{{Key: model.TutorialQuestKey, Stage: stage}},
	}))
}

func (s *ServiceSuite) position(username string) model.Position {
	account, err := s.storage.GetAccount(s.ctx, username)
	s.Require().NoError(err)
	return account.Position()
}

func (s *ServiceSuite) saveInventory(username string, slots ...model.Slot) {
	s.Require().NoError(s.storage.SaveContainer(s.ctx, &model.Container{
		Kind:     model.ContainerInventory,
		Username: username,
		Slots:    slots,
	}))
}

func (s *ServiceSuite) slots(kind model.ContainerKind, username string) []model.Slot {
	c, err := s.storage.GetContainer(s.ctx, kind, username)
	s.Require().NoError(err)
	return c.Slots
}

// ResetPositions tests

func (s *ServiceSuite) TestResetPositionsTutorialAndMissingQuest() {
	s.Require().Equal(5, s.content.TutorialStageCount())
	s.addAccount("alice", model.Position{X: 1, Y: 1})
	s.addAccount("bob", model.Position{X: 7, Y: 8})
	s.setTutorialStage("alice", 2)

	report, err := s.service.ResetPositions(s.ctx)
	s.Require().NoError(err)

	s.Equal(model.Position{X: 10, Y: 20}, s.position("alice"), "unfinished tutorial goes to the tutorial spawn")
	s.Equal(model.Position{X: 7, Y: 8}, s.position("bob"), "no quest record leaves the account untouched")

	s.Equal(JobResetPositions, report.Job)
	s.Equal(2, report.Scanned)
	s.Equal(1, report.Updated)
	s.Equal(1, report.Skipped)
	s.Zero(report.Failed)
}

func (s *ServiceSuite) TestResetPositionsFinishedTutorial() {
	s.addAccount("carol", model.Position{})
	s.setTutorialStage("carol", 5)

	_, err := s.service.ResetPositions(s.ctx)
	s.Require().NoError(err)

	s.Equal(model.Position{X: 500, Y: 400}, s.position("carol"))
}

func (s *ServiceSuite) TestResetPositionsWithoutTutorialEntry() {
	s.addAccount("dave", model.Position{})
	s.Require().NoError(s.storage.SaveQuestProgress(s.ctx, &model.QuestProgress{
		Username: "dave",
		Quests:   []model.QuestStage{{Key: "pirate", Stage: 3}},
	}))

	_, err := s.service.ResetPositions(s.ctx)
	s.Require().NoError(err)

	s.Equal(model.Position{X: 10, Y: 20}, s.position("dave"))
}

func (s *ServiceSuite) TestResetPositionsContinuesAfterFailure() {
	for _, name := range []string{"alice", "bob", "carol"} {
		s.addAccount(name, model.Position{})
		s.setTutorialStage(name, 5)
	}
	s.provider.store = &flakyStore{Storage: s.storage, failFor: "bob"}

	report, err := s.service.ResetPositions(s.ctx)
	s.Require().NoError(err)

	s.Equal(3, report.Scanned)
	s.Equal(2, report.Updated)
	s.Equal(1, report.Failed)
	s.Equal(model.Position{X: 500, Y: 400}, s.position("alice"))
	s.Equal(model.Position{X: 500, Y: 400}, s.position("carol"))
}

func (s *ServiceSuite) TestResetPositionsBadSpawn() {
	c := s.content
	c.DefaultSpawn = "somewhere"
	service := New(s.provider, c, s.clock, testutil.NopLogger())

	_, err := service.ResetPositions(s.ctx)
	s.ErrorIs(err, content.ErrInvalidCoordinates)
}

// DesanitizeContainers tests

func (s *ServiceSuite) TestDesanitizeContainersScenario() {
	s.saveInventory("alice",
		model.Slot{Key: "token", Count: 50},
		model.Slot{Key: "gold", Count: 100},
		model.Slot{Key: "flask", Count: 3},
	)

	report, err := s.service.DesanitizeContainers(s.ctx)
	s.Require().NoError(err)

	s.Equal([]model.Slot{
		model.EmptySlot(),
		{Key: "gold", Count: 100},
		{Key: "flask", Count: 3},
	}, s.slots(model.ContainerInventory, "alice"))
	s.Equal(1, report.Updated)
	s.Equal(1, report.Cleared)
}

func (s *ServiceSuite) TestDesanitizeAllKinds() {
	for _, kind := range model.ContainerKinds {
		s.Require().NoError(s.storage.SaveContainer(s.ctx, &model.Container{
			Kind:     kind,
			Username: "alice",
			Slots: []model.Slot{
				{Key: "gold", Count: 5_000_000},
				{Key: "partyhat", Count: 1},
				{Key: "logs", Count: 250},
				{Key: "logs", Count: 20},
			},
		}))
	}

	report, err := s.service.DesanitizeContainers(s.ctx)
	s.Require().NoError(err)

	want := []model.Slot{model.EmptySlot(), model.EmptySlot(), model.EmptySlot(), {Key: "logs", Count: 20}}
	for _, kind := range model.ContainerKinds {
		s.Equal(want, s.slots(kind, "alice"), "kind %s", kind)
	}
	s.Equal(3, report.Scanned)
	s.Equal(3, report.Updated)
	s.Equal(9, report.Cleared)
}

func (s *ServiceSuite) TestDesanitizeIsIdempotent() {
	s.saveInventory("alice",
		model.Slot{Key: "token", Count: 50},
		model.Slot{Key: "ironarmor", Count: 1},
		model.Slot{Key: "gold", Count: 100},
	)

	_, err := s.service.DesanitizeContainers(s.ctx)
	s.Require().NoError(err)
	once := s.slots(model.ContainerInventory, "alice")

	report, err := s.service.DesanitizeContainers(s.ctx)
	s.Require().NoError(err)

	s.Equal(once, s.slots(model.ContainerInventory, "alice"))
	s.Zero(report.Cleared)
	s.Zero(report.Updated, "unchanged containers are not written back")
}

func (s *ServiceSuite) TestDesanitizeKeepsSlotPositions() {
	s.saveInventory("alice",
		model.Slot{Key: "flask", Count: 2},
		model.Slot{Key: "token", Count: 1},
		model.EmptySlot(),
		model.Slot{Key: "arrow", Count: 900},
	)

	_, err := s.service.DesanitizeContainers(s.ctx)
	s.Require().NoError(err)

	s.Equal([]model.Slot{
		{Key: "flask", Count: 2},
		model.EmptySlot(),
		model.EmptySlot(),
		{Key: "arrow", Count: 900},
	}, s.slots(model.ContainerInventory, "alice"))
}

func (s *ServiceSuite) TestDesanitizeContinuesAfterFailure() {
	s.saveInventory("alice", model.Slot{Key: "token", Count: 1})
	s.saveInventory("bob", model.Slot{Key: "token", Count: 1})
	s.saveInventory("carol", model.Slot{Key: "token", Count: 1})
	s.provider.store = &flakyStore{Storage: s.storage, failFor: "bob"}

	report, err := s.service.DesanitizeContainers(s.ctx)
	s.Require().NoError(err)

	s.Equal(2, report.Updated)
	s.Equal(1, report.Failed)
	s.Equal([]model.Slot{model.EmptySlot()}, s.slots(model.ContainerInventory, "alice"))
	s.Equal([]model.Slot{{Key: "token", Count: 1}}, s.slots(model.ContainerInventory, "bob"))
	s.Equal([]model.Slot{model.EmptySlot()}, s.slots(model.ContainerInventory, "carol"))
}

// Shared behaviour

func (s *ServiceSuite) TestReportsCarryRunID() {
	first, err := s.service.DesanitizeContainers(s.ctx)
	s.Require().NoError(err)
	second, err := s.service.DesanitizeContainers(s.ctx)
	s.Require().NoError(err)

	s.NoError(uuid.Validate(first.RunID))
	s.NotEqual(first.RunID, second.RunID)
}

func (s *ServiceSuite) TestStoreUnavailable() {
	s.provider.store = nil

	_, err := s.service.ResetPositions(s.ctx)
	s.ErrorIs(err, ErrStoreUnavailable)

	_, err = s.service.DesanitizeContainers(s.ctx)
	s.ErrorIs(err, ErrStoreUnavailable)
}

func (s *ServiceSuite) TestCancelledContextStopsScan() {
	s.addAccount("alice", model.Position{})
	s.setTutorialStage("alice", 1)

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.service.ResetPositions(ctx)
	s.ErrorIs(err, context.Canceled)
}
