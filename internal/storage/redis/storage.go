package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/gamedb-go/internal/model"
	"github.com/mcoot/gamedb-go/internal/storage"
)

// Account hash fields
const (
	fieldUsername  = "username"
	fieldPassword  = "password"
	fieldEmail     = "email"
	fieldRank      = "rank"
	fieldX         = "x"
	fieldY         = "y"
	fieldCreatedAt = "creationTime"
)

// insertAccountScript claims the username and, when present, the email in one
// step. Returns 0 on success, 1 if the username is taken, 2 if the email is.
var insertAccountScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 1
end
if ARGV[3] ~= '' then
	if redis.call('EXISTS', KEYS[3]) == 1 then
		return 2
	end
	redis.call('SET', KEYS[3], ARGV[1])
end
redis.call('HSET', KEYS[1],
	'username', ARGV[1], 'password', ARGV[2], 'email', ARGV[3],
	'rank', ARGV[4], 'x', ARGV[5], 'y', ARGV[6], 'creationTime', ARGV[7])
redis.call('SADD', KEYS[2], ARGV[1])
return 0
`)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance and verifies the connection
func New(ctx context.Context, cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks the server is reachable
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) GetAccount(ctx context.Context, username string) (*model.Account, error) {
	fields, err := s.client.HGetAll(ctx, accountKey(username)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, model.ErrAccountNotFound
	}
	return decodeAccount(username, fields)
}

func (s *Storage) AccountExists(ctx context.Context, username string) (bool, error) {
	n, err := s.client.Exists(ctx, accountKey(username)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Storage) EmailExists(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	n, err := s.client.Exists(ctx, emailIndexKey(email)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Storage) InsertAccount(ctx context.Context, account *model.Account) error {
	keys := []string{accountKey(account.Username), accountIndexKey(), emailIndexKey(account.Email)}
	args := []any{
		account.Username,
		account.PasswordHash,
		account.Email,
		int(account.Rank),
		formatFloat(account.X),
		formatFloat(account.Y),
		account.CreatedAt.UnixMilli(),
	}

	code, err := insertAccountScript.Run(ctx, s.client, keys, args...).Int()
	if err != nil {
		return fmt.Errorf("inserting account: %w", err)
	}

	switch code {
	case 0:
		return nil
	case 1:
		return model.ErrUsernameTaken
	case 2:
		return model.ErrEmailTaken
	default:
		return fmt.Errorf("inserting account: unexpected script result %d", code)
	}
}

func (s *Storage) UpsertRank(ctx context.Context, username string, rank model.Rank) error {
	return s.upsertFields(ctx, username, fieldRank, int(rank))
}

func (s *Storage) UpsertPosition(ctx context.Context, username string, pos model.Position) error {
	return s.upsertFields(ctx, username, fieldX, formatFloat(pos.X), fieldY, formatFloat(pos.Y))
}

// upsertFields sets hash fields on an account, creating it if absent
func (s *Storage) upsertFields(ctx context.Context, username string, fieldValues ...any) error {
	values := append([]any{fieldUsername, username}, fieldValues...)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, accountKey(username), values...)
	pipe.SAdd(ctx, accountIndexKey(), username)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) CountAccounts(ctx context.Context) (int64, error) {
	return s.client.SCard(ctx, accountIndexKey()).Result()
}

func (s *Storage) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	usernames, err := s.client.SMembers(ctx, accountIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(usernames) == 0 {
		return []*model.Account{}, nil
	}
	sort.Strings(usernames)

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(usernames))
	for i, username := range usernames {
		cmds[i] = pipe.HGetAll(ctx, accountKey(username))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	accounts := make([]*model.Account, 0, len(usernames))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue // Index entry without a record
		}
		account, err := decodeAccount(usernames[i], fields)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// Quest progress operations

func (s *Storage) GetQuestProgress(ctx context.Context, username string) (*model.QuestProgress, error) {
	data, err := s.client.Get(ctx, questKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrQuestProgressNotFound
		}
		return nil, err
	}

	var progress model.QuestProgress
	if err := json.Unmarshal(data, &progress); err != nil {
		return nil, err
	}
	if progress.Username == "" {
		progress.Username = username
	}
	return &progress, nil
}

func (s *Storage) SaveQuestProgress(ctx context.Context, progress *model.QuestProgress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, questKey(progress.Username), data, 0).Err()
}

// Container operations

func (s *Storage) ListContainers(ctx context.Context, kind model.ContainerKind) ([]*model.Container, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownContainerKind, kind)
	}

	keys, err := s.client.SMembers(ctx, containerIndexKey(kind)).Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []*model.Container{}, nil
	}
	sort.Strings(keys)

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	containers := make([]*model.Container, 0, len(values))
	for i, val := range values {
		if val == nil {
			continue // Index entry without a document
		}
		c, err := model.DecodeContainer(kind, []byte(val.(string)))
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", keys[i], err)
		}
		containers = append(containers, c)
	}
	return containers, nil
}

func (s *Storage) GetContainer(ctx context.Context, kind model.ContainerKind, username string) (*model.Container, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownContainerKind, kind)
	}

	data, err := s.client.Get(ctx, containerKey(kind, username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrContainerNotFound
		}
		return nil, err
	}

	c, err := model.DecodeContainer(kind, data)
	if err != nil {
		return nil, err
	}
	if c.Username == "" {
		c.Username = username
	}
	return c, nil
}

func (s *Storage) SaveContainer(ctx context.Context, container *model.Container) error {
	if !container.Kind.Valid() {
		return fmt.Errorf("%w: %q", model.ErrUnknownContainerKind, container.Kind)
	}

	data, err := json.Marshal(container)
	if err != nil {
		return err
	}

	key := containerKey(container.Kind, container.Username)

	// Document and index entry are written together
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, containerIndexKey(container.Kind), key)
	_, err = pipe.Exec(ctx)
	return err
}

func decodeAccount(username string, fields map[string]string) (*model.Account, error) {
	account := &model.Account{
		Username:     username,
		PasswordHash: fields[fieldPassword],
		Email:        fields[fieldEmail],
	}

	if v, ok := fields[fieldRank]; ok {
		rank, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("account %s: rank: %w", username, err)
		}
		account.Rank = model.Rank(rank)
	}
	if v, ok := fields[fieldX]; ok {
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("account %s: x: %w", username, err)
		}
		account.X = x
	}
	if v, ok := fields[fieldY]; ok {
		y, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("account %s: y: %w", username, err)
		}
		account.Y = y
	}
	if v, ok := fields[fieldCreatedAt]; ok {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("account %s: creation time: %w", username, err)
		}
		account.CreatedAt = time.UnixMilli(ms).UTC()
	}
	return account, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
