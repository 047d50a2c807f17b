package app

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/DimaBagZ/film-react-nest/api"
	"github.com/DimaBagZ/film-react-nest/internal/domain"
	"github.com/DimaBagZ/film-react-nest/internal/events"
	"github.com/DimaBagZ/film-react-nest/internal/handler"
	applogger "github.com/DimaBagZ/film-react-nest/internal/logger"
	"github.com/DimaBagZ/film-react-nest/internal/mailer"
	"github.com/DimaBagZ/film-react-nest/internal/middleware"
	"github.com/DimaBagZ/film-react-nest/internal/repository"
	"github.com/DimaBagZ/film-react-nest/internal/reservation"
	appvalidator "github.com/DimaBagZ/film-react-nest/internal/validator"
	"github.com/DimaBagZ/film-react-nest/internal/vcs"
	"github.com/exaring/otelpgx"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const serviceName = "film-afisha-api"

var (
	version = vcs.Version()
)

type Application struct {
	config    Config
	logger    *slog.Logger
	validator *validator.Validate
	mailer    mailer.Mailer
	publisher events.Publisher
	swagger   *openapi3.T

	filmRepo domain.FilmRepository
	orders   *reservation.Service

	healthcheck *handler.HealthcheckHandler
	content     *handler.ContentHandler

	wg sync.WaitGroup
}

// NewApp wires an application around an already opened film repository.
// Mailer and publisher may be nil, which disables the matching side effect.
func NewApp(cfg Config, logger *slog.Logger, filmRepo domain.FilmRepository, m mailer.Mailer, p events.Publisher) (*Application, error) {
	swagger, err := api.GetSwagger()
	if err != nil {
		return nil, err
	}

	return &Application{
		config:      cfg,
		logger:      logger,
		validator:   appvalidator.NewValidator(),
		mailer:      m,
		publisher:   p,
		swagger:     swagger,
		filmRepo:    filmRepo,
		orders:      reservation.NewService(filmRepo, logger),
		healthcheck: handler.NewHealthcheckHandler(cfg.Env),
		content:     handler.NewContentHandler(cfg.StaticDir, logger),
	}, nil
}

func Run() error {
	// a missing .env file is not an error
	_ = godotenv.Load()

	cfg, displayVersion, err := parseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		return err
	}

	if displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		return nil
	}

	logger := slog.New(applogger.NewHandler(cfg.LogFormat, os.Stdout, nil))

	shutdownTelemetry, err := InitTelemetry(cfg, logger)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	if cfg.OtelCollectorUrl != "" {
		logger = slog.New(applogger.NewMultiHandler(logger.Handler(), otelslog.NewHandler(serviceName)))
	}

	filmRepo, closeRepo, err := newFilmRepository(cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	if cfg.Redis.URL != "" {
		redisClient, err := NewRedisClient(cfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		filmRepo = repository.NewCachedFilmRepository(filmRepo, redisClient, cfg.Redis.FilmsTTL, logger)
	}

	if cfg.SeedFile != "" {
		err = seedFilms(cfg.SeedFile, filmRepo, logger)
		if err != nil {
			return err
		}
	}

	var m mailer.Mailer
	if cfg.SMTP.Host != "" {
		m = mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender)
	}

	var p events.Publisher
	if cfg.AMQP.URL != "" {
		publisher, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Queue)
		if err != nil {
			return err
		}
		defer publisher.Close()

		p = publisher
	}

	app, err := NewApp(cfg, logger, filmRepo, m, p)
	if err != nil {
		return err
	}

	return app.run()
}

// newFilmRepository opens the store selected by the database driver and
// returns a function releasing its connections.
func newFilmRepository(cfg Config, logger *slog.Logger) (domain.FilmRepository, func(), error) {
	switch cfg.DB.Driver {
	case DriverInMemory:
		return repository.NewMemoryFilmRepository(), func() {}, nil

	case DriverPostgres:
		db, err := NewDatabasePool(cfg)
		if err != nil {
			return nil, nil, err
		}

		return repository.NewPostgresFilmRepository(db), db.Close, nil

	case DriverMySQL:
		db, err := NewMySQLDB(cfg)
		if err != nil {
			return nil, nil, err
		}

		return repository.NewMySQLFilmRepository(db), func() { db.Close() }, nil

	case DriverMongoDB:
		client, err := NewMongoClient(cfg)
		if err != nil {
			return nil, nil, err
		}

		closeClient := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := client.Disconnect(ctx); err != nil {
				logger.Error("failed to disconnect from mongodb", "error", err)
			}
		}

		repo := repository.NewMongoFilmRepository(client.Database(cfg.Mongo.Database))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err = repo.EnsureIndexes(ctx)
		if err != nil {
			closeClient()
			return nil, nil, err
		}

		return repo, closeClient, nil
	}

	return nil, nil, fmt.Errorf("unknown database driver %q", cfg.DB.Driver)
}

func seedFilms(path string, repo domain.FilmRepository, logger *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	films, err := repository.LoadFilms(f)
	if err != nil {
		return fmt.Errorf("seed %s: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created, err := repository.Seed(ctx, repo, films, logger)
	if err != nil {
		return err
	}

	logger.Info("seeded films", "file", path, "created", created, "total", len(films))

	return nil
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	err := errors.Join(redisotel.InstrumentTracing(rdb), redisotel.InstrumentMetrics(rdb))
	if err != nil {
		rdb.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.PostgresDSN())
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func NewMySQLDB(cfg Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DB.MySQLDSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxOpenConns)
	db.SetConnMaxIdleTime(cfg.DB.MaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func NewMongoClient(cfg Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, err
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	return client, nil
}

func (app *Application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		app.logger.Info("completing background tasks", "addr", srv.Addr)

		app.wg.Wait()
		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env, "driver", app.config.DB.Driver)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(middleware.NotFoundHandler)
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler)

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.LogRequests(app.logger))
	r.Use(middleware.RecoverPanic(app.logger))
	r.Use(middleware.Cors(app.config.Cors.TrustedOrigins))
	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))

	r.Get("/", app.healthcheck.GetStatus)
	r.Get("/healthcheck", app.healthcheck.GetHealth)
	r.Get("/content/afisha/*", app.content.ServeFile)

	r.Route("/api", func(r chi.Router) {
		r.Get("/docs", app.GetDocs)

		r.Route("/afisha", func(r chi.Router) {
			r.Get("/films", app.GetFilms)
			r.Get("/films/{id}/schedule", app.GetFilmSchedule)
			r.Post("/order", app.CreateOrder)
		})
	})

	return r
}
