package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/DimaBagZ/film-react-nest/internal/domain"
	"github.com/go-sql-driver/mysql"
)

const mysqlErrDuplicateEntry = 1062

type MySQLFilmRepository struct {
	db *sql.DB
}

func NewMySQLFilmRepository(db *sql.DB) *MySQLFilmRepository {
	return &MySQLFilmRepository{
		db: db,
	}
}

func (r *MySQLFilmRepository) GetAll(ctx context.Context) ([]*domain.Film, error) {
	query := `
		SELECT id, rating, director, tags, title, about, description, image, cover
		FROM films
		ORDER BY title, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	films := []*domain.Film{}

	for rows.Next() {
		var (
			film domain.Film
			tags []byte
		)

		err := rows.Scan(
			&film.ID,
			&film.Rating,
			&film.Director,
			&tags,
			&film.Title,
			&film.About,
			&film.Description,
			&film.Image,
			&film.Cover,
		)
		if err != nil {
			return nil, err
		}

		film.Tags, err = unmarshalStrings(tags)
		if err != nil {
			return nil, fmt.Errorf("film %s tags: %w", film.ID, err)
		}

		films = append(films, &film)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return films, nil
}

func (r *MySQLFilmRepository) GetSchedule(ctx context.Context, filmID string) ([]domain.Session, error) {
	var exists bool

	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM films WHERE id = ?)`, filmID).Scan(&exists)
	if err != nil {
		return nil, err
	}

	if !exists {
		return nil, domain.ErrRecordNotFound
	}

	query := "SELECT id, film_id, daytime, hall, `rows`, seats, price, taken " +
		"FROM schedules WHERE film_id = ? ORDER BY daytime"

	rows, err := r.db.QueryContext(ctx, query, filmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []domain.Session{}

	for rows.Next() {
		session, err := scanMySQLSession(rows)
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

func (r *MySQLFilmRepository) GetSession(ctx context.Context, filmID, sessionID string) (*domain.Session, error) {
	query := "SELECT id, film_id, daytime, hall, `rows`, seats, price, taken " +
		"FROM schedules WHERE id = ? AND film_id = ?"

	session, err := scanMySQLSession(r.db.QueryRowContext(ctx, query, sessionID, filmID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return session, nil
}

// AddTakenSeats locks the session row for the duration of the check and the
// write, so two orders for the same key serialize on the row lock.
func (r *MySQLFilmRepository) AddTakenSeats(ctx context.Context, filmID, sessionID string, keys []string) (bool, error) {
	modified := false

	err := runInSQLTx(ctx, r.db, func(tx *sql.Tx) error {
		var raw []byte

		err := tx.QueryRowContext(ctx,
			`SELECT taken FROM schedules WHERE id = ? AND film_id = ? FOR UPDATE`,
			sessionID, filmID,
		).Scan(&raw)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}

			return err
		}

		taken, err := unmarshalStrings(raw)
		if err != nil {
			return err
		}

		for _, key := range keys {
			if slices.Contains(taken, key) {
				return nil
			}
		}

		updated, err := json.Marshal(append(taken, keys...))
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE schedules SET taken = ? WHERE id = ? AND film_id = ?`,
			updated, sessionID, filmID,
		)
		if err != nil {
			return err
		}

		modified = true

		return nil
	})
	if err != nil {
		return false, err
	}

	return modified, nil
}

func (r *MySQLFilmRepository) Create(ctx context.Context, film *domain.Film) error {
	return runInSQLTx(ctx, r.db, func(tx *sql.Tx) error {
		tags, err := json.Marshal(nonNilStrings(film.Tags))
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO films (id, rating, director, tags, title, about, description, image, cover)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			film.ID,
			film.Rating,
			film.Director,
			tags,
			film.Title,
			film.About,
			film.Description,
			film.Image,
			film.Cover,
		)
		if err != nil {
			var mysqlErr *mysql.MySQLError
			if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
				return domain.ErrFilmAlreadyExists
			}

			return err
		}

		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO schedules (id, film_id, daytime, hall, `rows`, seats, price, taken) "+
				"VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, s := range film.Schedule {
			taken, err := json.Marshal(nonNilStrings(s.Taken))
			if err != nil {
				return err
			}

			_, err = stmt.ExecContext(ctx, s.ID, film.ID, s.Daytime.UTC(), s.Hall, s.Rows, s.Seats, s.Price, taken)
			if err != nil {
				return fmt.Errorf("insert session %s: %w", s.ID, err)
			}
		}

		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMySQLSession(row rowScanner) (*domain.Session, error) {
	var (
		session domain.Session
		taken   []byte
	)

	err := row.Scan(
		&session.ID,
		&session.FilmID,
		&session.Daytime,
		&session.Hall,
		&session.Rows,
		&session.Seats,
		&session.Price,
		&taken,
	)
	if err != nil {
		return nil, err
	}

	session.Taken, err = unmarshalStrings(taken)
	if err != nil {
		return nil, fmt.Errorf("session %s taken seats: %w", session.ID, err)
	}

	return &session, nil
}

func runInSQLTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err == nil {
		return tx.Commit()
	}

	rollbackErr := tx.Rollback()
	if rollbackErr != nil {
		return errors.Join(err, rollbackErr)
	}

	return err
}

func unmarshalStrings(raw []byte) ([]string, error) {
	values := []string{}
	if len(raw) == 0 {
		return values, nil
	}

	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}

	if values == nil {
		values = []string{}
	}

	return values, nil
}
