package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/DimaBagZ/film-react-nest/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PostgresFilmRepository struct {
	db *pgxpool.Pool
}

func NewPostgresFilmRepository(db *pgxpool.Pool) *PostgresFilmRepository {
	return &PostgresFilmRepository{
		db: db,
	}
}

func (p *PostgresFilmRepository) GetAll(ctx context.Context) ([]*domain.Film, error) {
	query := `
		SELECT id, rating, director, tags, title, about, description, image, cover
		FROM films
		ORDER BY title, id
	`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	films := []*domain.Film{}

	for rows.Next() {
		var film domain.Film

		err := rows.Scan(
			&film.ID,
			&film.Rating,
			&film.Director,
			&film.Tags,
			&film.Title,
			&film.About,
			&film.Description,
			&film.Image,
			&film.Cover,
		)
		if err != nil {
			return nil, err
		}

		films = append(films, &film)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return films, nil
}

func (p *PostgresFilmRepository) GetSchedule(ctx context.Context, filmID string) ([]domain.Session, error) {
	var exists bool

	err := p.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM films WHERE id = $1)`, filmID).Scan(&exists)
	if err != nil {
		return nil, err
	}

	if !exists {
		return nil, domain.ErrRecordNotFound
	}

	query := `
		SELECT id, film_id, daytime, hall, "rows", seats, price, taken
		FROM schedules
		WHERE film_id = $1
		ORDER BY daytime
	`

	rows, err := p.db.Query(ctx, query, filmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []domain.Session{}

	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}

		sessions = append(sessions, *session)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

func (p *PostgresFilmRepository) GetSession(ctx context.Context, filmID, sessionID string) (*domain.Session, error) {
	query := `
		SELECT id, film_id, daytime, hall, "rows", seats, price, taken
		FROM schedules
		WHERE id = $1 AND film_id = $2
	`

	session, err := scanSession(p.db.QueryRow(ctx, query, sessionID, filmID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return session, nil
}

// AddTakenSeats appends keys in one conditional statement; the overlap
// predicate makes a concurrent writer of the same key update zero rows.
func (p *PostgresFilmRepository) AddTakenSeats(ctx context.Context, filmID, sessionID string, keys []string) (bool, error) {
	query := `
		UPDATE schedules
		SET taken = taken || $3::text[]
		WHERE id = $1 AND film_id = $2 AND NOT (taken && $3::text[])
	`

	tag, err := p.db.Exec(ctx, query, sessionID, filmID, keys)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func (p *PostgresFilmRepository) Create(ctx context.Context, film *domain.Film) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO films (id, rating, director, tags, title, about, description, image, cover)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`

		_, err := tx.Exec(
			ctx,
			query,
			film.ID,
			film.Rating,
			film.Director,
			nonNilStrings(film.Tags),
			film.Title,
			film.About,
			film.Description,
			film.Image,
			film.Cover,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return domain.ErrFilmAlreadyExists
			}

			return err
		}

		if len(film.Schedule) == 0 {
			return nil
		}

		rows := make([][]any, 0, len(film.Schedule))
		for _, s := range film.Schedule {
			rows = append(rows, []any{
				s.ID,
				film.ID,
				s.Daytime,
				s.Hall,
				s.Rows,
				s.Seats,
				decimalToNumeric(s.Price),
				nonNilStrings(s.Taken),
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"schedules"},
			[]string{"id", "film_id", "daytime", "hall", "rows", "seats", "price", "taken"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("insert schedule of film %s: %w", film.ID, err)
		}

		return nil
	})
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var (
		session domain.Session
		price   pgtype.Numeric
	)

	err := row.Scan(
		&session.ID,
		&session.FilmID,
		&session.Daytime,
		&session.Hall,
		&session.Rows,
		&session.Seats,
		&price,
		&session.Taken,
	)
	if err != nil {
		return nil, err
	}

	session.Price = numericToDecimal(price)
	session.Taken = nonNilStrings(session.Taken)

	return &session, nil
}

func runInTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	var txOptions pgx.TxOptions

	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err == nil {
		return tx.Commit(ctx)
	}

	rollbackErr := tx.Rollback(ctx)
	if rollbackErr != nil {
		return errors.Join(err, rollbackErr)
	}

	return err
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Int:   d.Coefficient(),
		Exp:   d.Exponent(),
		Valid: true,
	}
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
