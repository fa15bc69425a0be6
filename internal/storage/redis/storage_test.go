package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gamedb-go/internal/model"
	"github.com/mcoot/gamedb-go/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	mini    *miniredis.Miniredis
	storage *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.Storage = s.storage
	s.Ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

func (s *StorageSuite) TestAccountStoredAsHash() {
	account := &model.Account{
		Username:     "alice",
		PasswordHash: "hash",
		Email:        "alice@example.com",
		Rank:         model.RankModerator,
		X:            1.5,
		Y:            -3,
		CreatedAt:    time.UnixMilli(1700000000000).UTC(),
	}
	s.Require().NoError(s.storage.InsertAccount(s.Ctx, account))

	s.Equal("alice", s.mini.HGet(accountKey("alice"), fieldUsername))
	s.Equal("hash", s.mini.HGet(accountKey("alice"), fieldPassword))
	s.Equal("1", s.mini.HGet(accountKey("alice"), fieldRank))
	s.Equal("1.5", s.mini.HGet(accountKey("alice"), fieldX))
	s.Equal("1700000000000", s.mini.HGet(accountKey("alice"), fieldCreatedAt))

	owner, err := s.mini.Get(emailIndexKey("alice@example.com"))
	s.Require().NoError(err)
	s.Equal("alice", owner)
}

func (s *StorageSuite) TestEmptyEmailLeavesNoIndexKey() {
	s.Require().NoError(s.storage.InsertAccount(s.Ctx, &model.Account{Username: "bob"}))

	s.False(s.mini.Exists(emailIndexKey("")))
}

func (s *StorageSuite) TestContainerDocumentUsesKindField() {
	c := &model.Container{
		Kind:     model.ContainerEquipment,
		Username: "alice",
		Slots:    []model.Slot{{Key: "helmet", Count: 1}},
	}
	s.Require().NoError(s.storage.SaveContainer(s.Ctx, c))

	raw, err := s.mini.Get(containerKey(model.ContainerEquipment, "alice"))
	s.Require().NoError(err)
	s.JSONEq(`{"username":"alice","equipments":[{"key":"helmet","count":1}]}`, raw)

	members, err := s.mini.Members(containerIndexKey(model.ContainerEquipment))
	s.Require().NoError(err)
	s.Equal([]string{containerKey(model.ContainerEquipment, "alice")}, members)
}

func (s *StorageSuite) TestListSkipsDanglingIndexEntries() {
	s.Require().NoError(s.storage.InsertAccount(s.Ctx, &model.Account{Username: "alice"}))
	_, err := s.mini.SAdd(accountIndexKey(), "ghost")
	s.Require().NoError(err)

	accounts, err := s.storage.ListAccounts(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(accounts, 1)
	s.Equal("alice", accounts[0].Username)
}

func (s *StorageSuite) TestPingFailsWhenServerDown() {
	s.mini.Close()

	s.Error(s.storage.Ping(s.Ctx))
}
