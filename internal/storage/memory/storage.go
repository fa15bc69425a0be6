package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mcoot/gamedb-go/internal/model"
	"github.com/mcoot/gamedb-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	accounts   map[string]*model.Account
	emailIndex map[string]string // email -> username
	quests     map[string]*model.QuestProgress
	containers map[model.ContainerKind]map[string]*model.Container
}

// New creates a new in-memory storage instance
func New() *Storage {
	containers := make(map[model.ContainerKind]map[string]*model.Container, len(model.ContainerKinds))
	for _, kind := range model.ContainerKinds {
		containers[kind] = make(map[string]*model.Container)
	}
	return &Storage{
		accounts:   make(map[string]*model.Account),
		emailIndex: make(map[string]string),
		quests:     make(map[string]*model.QuestProgress),
		containers: containers,
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) GetAccount(ctx context.Context, username string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[username]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return account.Clone(), nil
}

func (s *Storage) AccountExists(ctx context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[username]
	return ok, nil
}

func (s *Storage) EmailExists(ctx context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.emailIndex[email]
	return ok, nil
}

func (s *Storage) InsertAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.Username]; ok {
		return model.ErrUsernameTaken
	}
	if account.Email != "" {
		if _, ok := s.emailIndex[account.Email]; ok {
			return model.ErrEmailTaken
		}
		s.emailIndex[account.Email] = account.Username
	}
	s.accounts[account.Username] = account.Clone()
	return nil
}

func (s *Storage) UpsertRank(ctx context.Context, username string, rank model.Rank) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsert(username).Rank = rank
	return nil
}

func (s *Storage) UpsertPosition(ctx context.Context, username string, pos model.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account := s.upsert(username)
	account.X = pos.X
	account.Y = pos.Y
	return nil
}

// upsert returns the stored account, creating a bare record if absent.
// Caller must hold the write lock.
func (s *Storage) upsert(username string) *model.Account {
	account, ok := s.accounts[username]
	if !ok {
		account = &model.Account{Username: username}
		s.accounts[username] = account
	}
	return account
}

func (s *Storage) CountAccounts(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.accounts)), nil
}

func (s *Storage) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]*model.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, account.Clone())
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Username < accounts[j].Username })
	return accounts, nil
}

// Quest progress operations

func (s *Storage) GetQuestProgress(ctx context.Context, username string) (*model.QuestProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	progress, ok := s.quests[username]
	if !ok {
		return nil, model.ErrQuestProgressNotFound
	}
	return progress.Clone(), nil
}

func (s *Storage) SaveQuestProgress(ctx context.Context, progress *model.QuestProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quests[progress.Username] = progress.Clone()
	return nil
}

// Container operations

func (s *Storage) ListContainers(ctx context.Context, kind model.ContainerKind) ([]*model.Container, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byUser, ok := s.containers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownContainerKind, kind)
	}
	containers := make([]*model.Container, 0, len(byUser))
	for _, c := range byUser {
		containers = append(containers, c.Clone())
	}
	sort.Slice(containers, func(i, j int) bool { return containers[i].Username < containers[j].Username })
	return containers, nil
}

func (s *Storage) GetContainer(ctx context.Context, kind model.ContainerKind, username string) (*model.Container, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byUser, ok := s.containers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownContainerKind, kind)
	}
	c, ok := byUser[username]
	if !ok {
		return nil, model.ErrContainerNotFound
	}
	return c.Clone(), nil
}

func (s *Storage) SaveContainer(ctx context.Context, container *model.Container) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byUser, ok := s.containers[container.Kind]
	if !ok {
		return fmt.Errorf("%w: %q", model.ErrUnknownContainerKind, container.Kind)
	}
	byUser[container.Username] = container.Clone()
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

func (s *Storage) Close() error {
	return nil
}
