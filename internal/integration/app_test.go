package integration_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/DimaBagZ/film-react-nest/internal/app"
	"github.com/DimaBagZ/film-react-nest/internal/domain"
	"github.com/DimaBagZ/film-react-nest/internal/events"
	"github.com/DimaBagZ/film-react-nest/internal/mailer"
	"github.com/DimaBagZ/film-react-nest/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type TestApp struct {
	App       *app.Application
	DB        *pgxpool.Pool
	Redis     *redis.Client
	Films     domain.FilmRepository
	Mailer    *mailer.MockMailer
	Publisher *events.MockPublisher
}

// newTestApp serves the PostgreSQL store through the Redis film cache, the
// same stack Run builds for DATABASE_DRIVER=postgres with REDIS_URL set.
func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	mailer := mailer.NewMockMailer()
	publisher := events.NewMockPublisher()

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	films := repository.NewCachedFilmRepository(
		repository.NewPostgresFilmRepository(db),
		redisClient,
		cfg.Redis.FilmsTTL,
		logger,
	)

	application, err := app.NewApp(cfg, logger, films, mailer, publisher)
	if err != nil {
		db.Close()
		redisClient.Close()
		return nil, err
	}

	return &TestApp{
		App:       application,
		DB:        db,
		Redis:     redisClient,
		Films:     films,
		Mailer:    mailer,
		Publisher: publisher,
	}, nil
}

func (a *TestApp) Close() {
	a.App.Wait()
	a.Redis.Close()
	a.DB.Close()
}

// reset empties the store and the cache and loads the seed file again.
func (a *TestApp) reset(ctx context.Context) error {
	_, err := a.DB.Exec(ctx, "TRUNCATE films, schedules")
	if err != nil {
		return err
	}

	err = a.Redis.FlushDB(ctx).Err()
	if err != nil {
		return err
	}

	f, err := os.Open(seedFile)
	if err != nil {
		return err
	}
	defer f.Close()

	films, err := repository.LoadFilms(f)
	if err != nil {
		return err
	}

	_, err = repository.Seed(ctx, a.Films, films, slog.New(slog.NewTextHandler(os.Stderr, nil)))

	return err
}
