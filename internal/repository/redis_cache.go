package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/DimaBagZ/film-react-nest/internal/domain"
	"github.com/redis/go-redis/v9"
)

const FilmsCacheKey = "afisha:films"

// CachedFilmRepository serves the film catalogue from Redis and delegates
// everything else. Sessions are never cached: their taken seats must be read
// fresh for every validation and commit.
type CachedFilmRepository struct {
	domain.FilmRepository

	redis  redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedFilmRepository(
	repo domain.FilmRepository,
	client redis.UniversalClient,
	ttl time.Duration,
	logger *slog.Logger) *CachedFilmRepository {

	return &CachedFilmRepository{
		FilmRepository: repo,
		redis:          client,
		ttl:            ttl,
		logger:         logger,
	}
}

func (c *CachedFilmRepository) GetAll(ctx context.Context) ([]*domain.Film, error) {
	cached, err := c.redis.Get(ctx, FilmsCacheKey).Bytes()
	switch {
	case err == nil:
		var films []*domain.Film
		if err := json.Unmarshal(cached, &films); err == nil {
			return films, nil
		}
		c.logger.Warn("discarding malformed films cache entry", "key", FilmsCacheKey)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("films cache read failed", "error", err)
	}

	films, err := c.FilmRepository.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(films)
	if err != nil {
		return films, nil
	}

	if err := c.redis.Set(ctx, FilmsCacheKey, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("films cache write failed", "error", err)
	}

	return films, nil
}

func (c *CachedFilmRepository) Create(ctx context.Context, film *domain.Film) error {
	err := c.FilmRepository.Create(ctx, film)
	if err != nil {
		return err
	}

	if err := c.redis.Del(ctx, FilmsCacheKey).Err(); err != nil {
		c.logger.Warn("films cache invalidation failed", "error", err)
	}

	return nil
}
