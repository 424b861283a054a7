package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bookstore-service/bookstore/internal/model"
)

type Repository interface {
	SearchTitles(ctx context.Context, filter model.TitleSearchFilter) (model.ListTitles, error)
	GetTitle(ctx context.Context, titleID uuid.UUID) (model.BookTitle, error)
	ListCopies(ctx context.Context, titleID uuid.UUID, onlyAvailable bool) ([]model.BookCopy, error)
}

const titleCacheTTL = 10 * time.Minute

// Service serves read-only inventory projections. Title details are cached
// read-through in redis; the cache is best-effort and never fails a query.
type Service struct {
	repo  Repository
	cache *redis.Client
	log   *zap.Logger
}

func NewService(repo Repository, cache *redis.Client, log *zap.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func (s *Service) Search(ctx context.Context, filter model.TitleSearchFilter) (model.ListTitles, error) {
	return s.repo.SearchTitles(ctx, filter)
}

func (s *Service) GetTitle(ctx context.Context, titleID uuid.UUID) (model.BookTitle, error) {
	key := fmt.Sprintf("title:%s", titleID)

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var title model.BookTitle
			if err := json.Unmarshal(data, &title); err == nil {
				return title, nil
			}
		}
	}

	title, err := s.repo.GetTitle(ctx, titleID)
	if err != nil {
		return model.BookTitle{}, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(title); err == nil {
			if err := s.cache.Set(ctx, key, data, titleCacheTTL).Err(); err != nil {
				s.log.Warn("title cache set", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return title, nil
}

func (s *Service) ListCopies(ctx context.Context, titleID uuid.UUID, onlyAvailable bool) ([]model.BookCopy, error) {
	return s.repo.ListCopies(ctx, titleID, onlyAvailable)
}
