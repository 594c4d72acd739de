package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/mcoot/trackmyhand/internal/model"
	"github.com/mcoot/trackmyhand/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	games map[model.GameID]*model.Game
	users map[model.UserID]*model.User
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		games: make(map[model.GameID]*model.Game),
		users: make(map[model.UserID]*model.User),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = game.Clone()
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game.Clone(), nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
	return nil
}

func (s *Storage) ListGames(ctx context.Context, limit int) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	games := make([]*model.Game, 0, len(s.games))
	for _, g := range s.games {
		games = append(games, g.Clone())
	}
	slices.SortFunc(games, func(a, b *model.Game) int {
		if c := b.SortTime().Compare(a.SortTime()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return truncate(games, limit), nil
}

func (s *Storage) CountGames(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games), nil
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return model.ErrUserExists
	}
	s.users[user.ID] = user.Clone()
	return nil
}

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user.Clone()
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user.Clone(), nil
}

func (s *Storage) ListUsers(ctx context.Context, limit int) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u.Clone())
	}
	slices.SortFunc(users, func(a, b *model.User) int {
		if c := b.TotalProfit.Cmp(a.TotalProfit); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return truncate(users, limit), nil
}

func (s *Storage) CountUsers(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
