package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/trackmyhand/internal/model"
	"github.com/mcoot/trackmyhand/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Snapshots are stored as JSON blobs; listings are served from sorted-set
// indexes kept in step by pipelines.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
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

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	// Snapshot and listing index move together
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, gameKey(game.ID), data, 0)
	pipe.ZAdd(ctx, gamesIndexKey(), redis.Z{
		Score:  float64(game.SortTime().UnixMilli()),
		Member: string(game.ID),
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, gameKey(id))
	pipe.ZRem(ctx, gamesIndexKey(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) ListGames(ctx context.Context, limit int) ([]*model.Game, error) {
	ids, err := s.client.ZRevRange(ctx, gamesIndexKey(), 0, stop(limit)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Game{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = gameKey(model.GameID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	games := make([]*model.Game, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Deleted between the two reads
		}
		var game model.Game
		if err := json.Unmarshal([]byte(val.(string)), &game); err != nil {
			return nil, err
		}
		games = append(games, &game)
	}
	return games, nil
}

func (s *Storage) CountGames(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, gamesIndexKey()).Result()
	return int(n), err
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	created, err := s.client.SetNX(ctx, userKey(user.ID), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrUserExists
	}
	return s.client.ZAdd(ctx, usersByProfitKey(), profitScore(user)).Err()
}

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, userKey(user.ID), data, 0)
	pipe.ZAdd(ctx, usersByProfitKey(), profitScore(user))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) ListUsers(ctx context.Context, limit int) ([]*model.User, error) {
	ids, err := s.client.ZRevRange(ctx, usersByProfitKey(), 0, stop(limit)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.User{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = userKey(model.UserID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	users := make([]*model.User, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var user model.User
		if err := json.Unmarshal([]byte(val.(string)), &user); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}
	return users, nil
}

func (s *Storage) CountUsers(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, usersByProfitKey()).Result()
	return int(n), err
}

func profitScore(user *model.User) redis.Z {
	return redis.Z{
		Score:  user.TotalProfit.InexactFloat64(),
		Member: string(user.ID),
	}
}

// stop converts a listing limit to an inclusive ZRANGE stop index
func stop(limit int) int64 {
	if limit <= 0 {
		return -1
	}
	return int64(limit - 1)
}
