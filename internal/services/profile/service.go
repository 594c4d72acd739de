package profile

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/trackmyhand/internal/dependencies/clock"
	"github.com/mcoot/trackmyhand/internal/model"
	"github.com/mcoot/trackmyhand/internal/storage"
)

// Service manages user profiles and their optional PINs
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
	cfg     Config
}

// Config holds configuration for the profile service
type Config struct {
	MinPINLength int
	MaxPINLength int
	BcryptCost   int
}

// DefaultConfig returns default profile configuration
func DefaultConfig() Config {
	return Config{
		MinPINLength: 3,
		MaxPINLength: 10,
		BcryptCost:   bcrypt.DefaultCost,
	}
}

// New creates a new profile service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.MinPINLength == 0 {
		cfg.MinPINLength = def.MinPINLength
	}
	if cfg.MaxPINLength == 0 {
		cfg.MaxPINLength = def.MaxPINLength
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = def.BcryptCost
	}
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
		cfg:     cfg,
	}
}

// CreateUser creates a profile. A nil pin leaves the profile open.
func (s *Service) CreateUser(ctx context.Context, id string, pin *string) (*model.User, error) {
	userID, err := parseUserID(id)
	if err != nil {
		return nil, err
	}

	user := model.NewUser(userID, s.clock.Now())
	if pin != nil {
		hash, err := s.hashPIN(*pin)
		if err != nil {
			return nil, err
		}
		user.PINHash = hash
	}

	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, model.Persistence("create user", err)
	}

	s.logger.Info("user created",
		slog.String("user_id", string(userID)),
		slog.Bool("has_pin", user.HasPIN()),
	)
	return user, nil
}

// EnsureUser returns the profile for id, creating an open one if none
// exists. The bool reports whether a profile was created.
func (s *Service) EnsureUser(ctx context.Context, id model.UserID) (*model.User, bool, error) {
	user, err := s.storage.GetUser(ctx, id)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return nil, false, model.Persistence("get user", err)
	}

	user, err = s.CreateUser(ctx, string(id), nil)
	if errors.Is(err, model.ErrUserExists) {
		// Created concurrently
		user, err = s.storage.GetUser(ctx, id)
		return user, false, model.Persistence("get user", err)
	}
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// Authenticate checks pin against the stored hash. Open profiles accept
// any pin.
func (s *Service) Authenticate(ctx context.Context, id string, pin string) (*model.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.HasPIN() {
		return user, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PINHash), []byte(pin)); err != nil {
		return nil, model.ErrWrongPIN
	}
	return user, nil
}

// SetPIN replaces a profile's PIN after checking the current one. An empty
// newPIN removes the PIN.
func (s *Service) SetPIN(ctx context.Context, id string, currentPIN, newPIN string) (*model.User, error) {
	user, err := s.Authenticate(ctx, id, currentPIN)
	if err != nil {
		return nil, err
	}

	if newPIN == "" {
		user.PINHash = ""
	} else {
		hash, err := s.hashPIN(newPIN)
		if err != nil {
			return nil, err
		}
		user.PINHash = hash
	}
	user.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, model.Persistence("save user", err)
	}
	return user, nil
}

// ToggleFavorite flips the favorite flag used to pick players for new games
func (s *Service) ToggleFavorite(ctx context.Context, id string) (*model.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsFavorite = !user.IsFavorite
	user.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, model.Persistence("save user", err)
	}
	return user, nil
}

// GetUser loads a profile by id
func (s *Service) GetUser(ctx context.Context, id string) (*model.User, error) {
	userID, err := parseUserID(id)
	if err != nil {
		return nil, err
	}
	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, model.Persistence("get user", err)
	}
	return user, nil
}

// ListUsers returns profiles by total profit, highest first
func (s *Service) ListUsers(ctx context.Context, limit int) ([]*model.User, error) {
	users, err := s.storage.ListUsers(ctx, limit)
	if err != nil {
		return nil, model.Persistence("list users", err)
	}
	return users, nil
}

func (s *Service) CountUsers(ctx context.Context) (int, error) {
	n, err := s.storage.CountUsers(ctx)
	if err != nil {
		return 0, model.Persistence("count users", err)
	}
	return n, nil
}

func (s *Service) hashPIN(pin string) (string, error) {
	n := utf8.RuneCountInString(pin)
	if n < s.cfg.MinPINLength || n > s.cfg.MaxPINLength {
		return "", model.ErrInvalidPIN
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), s.cfg.BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func parseUserID(id string) (model.UserID, error) {
	userID := model.NormalizePlayerID(id)
	if userID == "" {
		return "", model.Validationf("user id is required")
	}
	if userID.IsBank() {
		return "", model.Validationf("%s is reserved", model.BankID)
	}
	return userID, nil
}
