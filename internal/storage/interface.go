package storage

import (
	"context"

	"github.com/mcoot/trackmyhand/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Game operations
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	DeleteGame(ctx context.Context, id model.GameID) error
	// ListGames returns up to limit games, most recently started first.
	// A limit of zero or less returns every game.
	ListGames(ctx context.Context, limit int) ([]*model.Game, error)
	CountGames(ctx context.Context) (int, error)

	// User operations
	// CreateUser fails with model.ErrUserExists if the id is taken
	CreateUser(ctx context.Context, user *model.User) error
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	// ListUsers returns up to limit users by total profit, highest first
	ListUsers(ctx context.Context, limit int) ([]*model.User, error)
	CountUsers(ctx context.Context) (int, error)
}
