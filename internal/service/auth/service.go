package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookstore-service/bookstore/internal/errs"
	"github.com/bookstore-service/bookstore/internal/model"
	pkgauth "github.com/bookstore-service/bookstore/pkg/auth"
)

type Repository interface {
	CreateUser(ctx context.Context, email, hashedPassword string, role model.Role) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (model.User, error)
}

type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type Service struct {
	cfg  Config
	repo Repository
	log  *zap.Logger
}

func NewService(cfg Config, repo Repository, log *zap.Logger) *Service {
	return &Service{
		cfg:  cfg,
		repo: repo,
		log:  log,
	}
}

func (s *Service) Register(ctx context.Context, email, password string, role model.Role) (model.User, error) {
	if role == "" {
		role = model.RoleReader
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, errors.Wrap(err, "hash password")
	}
	return s.repo.CreateUser(ctx, email, string(hash), role)
}

func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return "", errs.ErrForbidden
		}
		return "", err
	}
	if !user.IsActive {
		return "", errs.ErrForbidden
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return "", errs.ErrForbidden
	}

	token, err := pkgauth.NewToken(pkgauth.Profile{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, []byte(s.cfg.JWTSecret), s.cfg.TokenTTL)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return token, nil
}
