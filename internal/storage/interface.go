package storage

import (
	"context"

	"github.com/mcoot/gamedb-go/internal/model"
)

// Storage defines the interface for the shared remote store.
// Implementations return copies; callers never share records across calls.
type Storage interface {
	// Account operations
	GetAccount(ctx context.Context, username string) (*model.Account, error)
	AccountExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	// InsertAccount fails with model.ErrUsernameTaken or model.ErrEmailTaken
	// when the username or non-empty email is already claimed
	InsertAccount(ctx context.Context, account *model.Account) error
	UpsertRank(ctx context.Context, username string, rank model.Rank) error
	UpsertPosition(ctx context.Context, username string, pos model.Position) error
	CountAccounts(ctx context.Context) (int64, error)
	ListAccounts(ctx context.Context) ([]*model.Account, error)

	// Quest progress operations
	GetQuestProgress(ctx context.Context, username string) (*model.QuestProgress, error)
	SaveQuestProgress(ctx context.Context, progress *model.QuestProgress) error

	// Container operations
	ListContainers(ctx context.Context, kind model.ContainerKind) ([]*model.Container, error)
	GetContainer(ctx context.Context, kind model.ContainerKind, username string) (*model.Container, error)
	SaveContainer(ctx context.Context, container *model.Container) error

	Ping(ctx context.Context) error
	Close() error
}
