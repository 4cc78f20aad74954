package service

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"commerce-backend/internal/entity"
	"commerce-backend/internal/token"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

type UserService struct {
	users  UserStore
	orders OrderStore
	tokens *token.Service
}

// NewUserService creates a new instance of UserService.
func NewUserService(users UserStore, orders OrderStore, tokens *token.Service) *UserService {
	return &UserService{users: users, orders: orders, tokens: tokens}
}

// Register creates a user and issues a token so the session starts
// immediately. A taken email fails with ErrEmailTaken.
func (s *UserService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.User, string, error) {
	taken, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if taken {
		return nil, "", entity.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		RegisteredAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.CreateUser(ctx, user)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating user")
		return nil, "", err
	}

	tkn, err := s.tokens.Issue(created.ID, created.Email)
	if err != nil {
		return nil, "", err
	}

	return created, tkn, nil
}

// Login verifies credentials and issues a token. Bad email and bad password
// are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, entity.ErrUserNotFound) {
		return nil, "", entity.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", entity.ErrInvalidCredentials
	}

	tkn, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}

	return user, tkn, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return s.users.GetUserByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return s.users.GetUserByEmail(ctx, email)
}

func (s *UserService) List(ctx context.Context) ([]*entity.User, error) {
	return s.users.ListUsers(ctx)
}

// Update applies the non-empty fields of req. A changed email is re-checked
// for uniqueness, a changed password is re-hashed.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req *entity.RegisterRequest) (*entity.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" && req.Email != user.Email {
		taken, err := s.users.EmailExists(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, entity.ErrEmailTaken
		}
		user.Email = req.Email
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	user.UpdatedAt = time.Now().UTC()

	return s.users.UpdateUser(ctx, user)
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.users.DeleteUser(ctx, id)
}

// Orders lists a user's orders, most recent first.
func (s *UserService) Orders(ctx context.Context, id uuid.UUID) ([]*entity.Order, error) {
	if _, err := s.users.GetUserByID(ctx, id); err != nil {
		return nil, err
	}
	return s.orders.ListOrdersByUser(ctx, id)
}

func (s *UserService) CountOrders(ctx context.Context, id uuid.UUID) (int64, error) {
	if _, err := s.users.GetUserByID(ctx, id); err != nil {
		return 0, err
	}
	return s.orders.CountOrdersByUser(ctx, id)
}
