// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gamedb-go/internal/model"
	"github.com/mcoot/gamedb-go/internal/storage"
)

// Suite runs the shared storage contract against a backend.
// Backends embed it and set Storage in their own SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

func (s *Suite) account(username, email string) *model.Account {
	return &model.Account{
		Username:     username,
		PasswordHash: "hash-" + username,
		Email:        email,
		Rank:         model.RankPlayer,
		X:            10,
		Y:            20,
		CreatedAt:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Account tests

func (s *Suite) TestInsertAndGetAccount() {
	err := s.Storage.InsertAccount(s.Ctx, s.account("alice", "alice@example.com"))
	s.Require().NoError(err)

	retrieved, err := s.Storage.GetAccount(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal("alice", retrieved.Username)
	s.Equal("hash-alice", retrieved.PasswordHash)
	s.Equal("alice@example.com", retrieved.Email)
	s.Equal(model.Position{X: 10, Y: 20}, retrieved.Position())
	s.True(retrieved.CreatedAt.Equal(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)))
}

func (s *Suite) TestGetAccountNotFound() {
	_, err := s.Storage.GetAccount(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *Suite) TestUsernameIsCaseSensitive() {
	s.Require().NoError(s.Storage.InsertAccount(s.Ctx, s.account("Alice", "")))

	exists, err := s.Storage.AccountExists(s.Ctx, "alice")
	s.Require().NoError(err)
	s.False(exists)

	s.NoError(s.Storage.InsertAccount(s.Ctx, s.account("alice", "")))
}

func (s *Suite) TestInsertDuplicateUsername() {
	s.Require().NoError(s.Storage.InsertAccount(s.Ctx, s.account("alice", "")))

	err := s.Storage.InsertAccount(s.Ctx, s.account("alice", "other@example.com"))
	s.ErrorIs(err, model.ErrUsernameTaken)

	exists, err := s.Storage.EmailExists(s.Ctx, "other@example.com")
	s.Require().NoError(err)
	s.False(exists, "rejected insert must not claim the email")
}

func (s *Suite) TestInsertDuplicateEmail() {
	s.Require().NoError(s.Storage.InsertAccount(s.Ctx, s.account("alice", "shared@example.com")))

	err := s.Storage.InsertAccount(s.Ctx, s.account("bob", "shared@example.com"))
	s.ErrorIs(err, model.ErrEmailTaken)

	exists, err := s.Storage.AccountExists(s.Ctx, "bob")
	s.Require().NoError(err)
	s.False(exists, "rejected insert must not create the account")
}

func (s *Suite) TestEmptyEmailsDoNotCollide() {
	s.Require().NoError(s.Storage.InsertAccount(s.Ctx, s.account("alice", "")))
	s.NoError(s.Storage.InsertAccount(s.Ctx, s.account("bob", "")))

	exists, err := s.Storage.EmailExists(s.Ctx, "")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *Suite) TestConcurrentInsertsAdmitOne() {
	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Storage.InsertAccount(s.Ctx, s.account("racer", ""))
		}(i)
	}
	wg.Wait()

	admitted := 0
	for _, err := range errs {
		if err == nil {
			admitted++
			continue
		}
		s.ErrorIs(err, model.ErrUsernameTaken)
	}
	s.Equal(1, admitted)

	count, err := s.Storage.CountAccounts(s.Ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), count)
}

func (s *Suite) TestUpsertRank() {
	s.Require().NoError(s.Storage.InsertAccount(s.Ctx, s.account("alice", "")))

	s.Require().NoError(s.Storage.UpsertRank(s.Ctx, "alice", model.RankAdmin))

	retrieved, err := s.Storage.GetAccount(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.RankAdmin, retrieved.Rank)
	s.Equal("hash-alice", retrieved.PasswordHash, "upsert must only touch the rank field")
}

func (s *Suite) TestUpsertPositionCreatesMissingRecord() {
	s.Require().NoError(s.Storage.UpsertPosition(s.Ctx, "ghost", model.Position{X: 1.5, Y: -2.25}))

	retrieved, err := s.Storage.GetAccount(s.Ctx, "ghost")
	s.Require().NoError(err)
	s.Equal(model.Position{X: 1.5, Y: -2.25}, retrieved.Position())
}

func (s *Suite) TestCountAndListAccounts() {
	for _, name := range []string{"carol", "alice", "bob"} {
		s.Require().NoError(s.Storage.InsertAccount(s.Ctx, s.account(name, "")))
	}

	count, err := s.Storage.CountAccounts(s.Ctx)
	s.Require().NoError(err)
	s.Equal(int64(3), count)

	accounts, err := s.Storage.ListAccounts(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(accounts, 3)
	names := []string{accounts[0].Username, accounts[1].Username, accounts[2].Username}
	s.ElementsMatch([]string{"alice", "bob", "carol"}, names)
}

func (s *Suite) TestReturnedAccountsAreCopies() {
	s.Require().NoError(s.Storage.InsertAccount(s.Ctx, s.account("alice", "")))

	first, err := s.Storage.GetAccount(s.Ctx, "alice")
	s.Require().NoError(err)
	first.Rank = model.RankBanned

	second, err := s.Storage.GetAccount(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.RankPlayer, second.Rank)
}

// Quest progress tests

func (s *Suite) TestSaveAndGetQuestProgress() {
	progress := &model.QuestProgress{
		Username: "alice",
		Quests:   []model.QuestStage{{Key: "tutorial", Stage: 2}, {Key: "pirate", Stage: 0}},
	}
	s.Require().NoError(s.Storage.SaveQuestProgress(s.Ctx, progress))

	retrieved, err := s.Storage.GetQuestProgress(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(progress, retrieved)
}

func (s *Suite) TestGetQuestProgressNotFound() {
	_, err := s.Storage.GetQuestProgress(s.Ctx, "bob")
	s.ErrorIs(err, model.ErrQuestProgressNotFound)
}

// Container tests

func (s *Suite) TestSaveAndGetContainer() {
	for _, kind := range model.ContainerKinds {
		c := &model.Container{
			Kind:     kind,
			Username: "alice",
			Slots:    []model.Slot{{Key: "gold", Count: 100}, model.EmptySlot(), {Key: "flask", Count: 3}},
		}
		s.Require().NoError(s.Storage.SaveContainer(s.Ctx, c))

		retrieved, err := s.Storage.GetContainer(s.Ctx, kind, "alice")
		s.Require().NoError(err)
		s.Equal(c, retrieved)
	}
}

func (s *Suite) TestSaveContainerReplacesSlots() {
	c := &model.Container{Kind: model.ContainerBank, Username: "alice", Slots: []model.Slot{{Key: "token", Count: 5}}}
	s.Require().NoError(s.Storage.SaveContainer(s.Ctx, c))

	c.Slots[0].Clear()
	s.Require().NoError(s.Storage.SaveContainer(s.Ctx, c))

	retrieved, err := s.Storage.GetContainer(s.Ctx, model.ContainerBank, "alice")
	s.Require().NoError(err)
	s.Equal([]model.Slot{model.EmptySlot()}, retrieved.Slots)

	all, err := s.Storage.ListContainers(s.Ctx, model.ContainerBank)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *Suite) TestListContainersIsPerKind() {
	s.Require().NoError(s.Storage.SaveContainer(s.Ctx, &model.Container{Kind: model.ContainerInventory, Username: "alice", Slots: []model.Slot{}}))
	s.Require().NoError(s.Storage.SaveContainer(s.Ctx, &model.Container{Kind: model.ContainerInventory, Username: "bob", Slots: []model.Slot{}}))
	s.Require().NoError(s.Storage.SaveContainer(s.Ctx, &model.Container{Kind: model.ContainerEquipment, Username: "alice", Slots: []model.Slot{}}))

	inventories, err := s.Storage.ListContainers(s.Ctx, model.ContainerInventory)
	s.Require().NoError(err)
	s.Len(inventories, 2)

	banks, err := s.Storage.ListContainers(s.Ctx, model.ContainerBank)
	s.Require().NoError(err)
	s.Empty(banks)
}

func (s *Suite) TestGetContainerNotFound() {
	_, err := s.Storage.GetContainer(s.Ctx, model.ContainerInventory, "nobody")
	s.ErrorIs(err, model.ErrContainerNotFound)
}

func (s *Suite) TestUnknownContainerKind() {
	_, err := s.Storage.ListContainers(s.Ctx, "wardrobe")
	s.ErrorIs(err, model.ErrUnknownContainerKind)
}

func (s *Suite) TestPing() {
	s.NoError(s.Storage.Ping(s.Ctx))
}
