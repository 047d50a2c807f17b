package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DimaBagZ/film-react-nest/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const filmsCollection = "films"

type filmDocument struct {
	ID          string            `bson:"id"`
	Rating      float64           `bson:"rating"`
	Director    string            `bson:"director"`
	Tags        []string          `bson:"tags"`
	Title       string            `bson:"title"`
	About       string            `bson:"about"`
	Description string            `bson:"description"`
	Image       string            `bson:"image"`
	Cover       string            `bson:"cover"`
	Schedule    []sessionDocument `bson:"schedule,omitempty"`
}

type sessionDocument struct {
	ID      string               `bson:"id"`
	Daytime time.Time            `bson:"daytime"`
	Hall    int                  `bson:"hall"`
	Rows    int                  `bson:"rows"`
	Seats   int                  `bson:"seats"`
	Price   primitive.Decimal128 `bson:"price"`
	Taken   []string             `bson:"taken"`
}

// MongoFilmRepository stores each film as one document with its schedule
// embedded, so a session update is a single-document write.
type MongoFilmRepository struct {
	films *mongo.Collection
}

func NewMongoFilmRepository(db *mongo.Database) *MongoFilmRepository {
	return &MongoFilmRepository{
		films: db.Collection(filmsCollection),
	}
}

// EnsureIndexes creates the unique film id index Create relies on.
func (m *MongoFilmRepository) EnsureIndexes(ctx context.Context) error {
	_, err := m.films.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return err
}

func (m *MongoFilmRepository) GetAll(ctx context.Context) ([]*domain.Film, error) {
	opts := options.Find().
		SetProjection(bson.M{"schedule": 0}).
		SetSort(bson.D{{Key: "title", Value: 1}, {Key: "id", Value: 1}})

	cursor, err := m.films.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}

	var docs []filmDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	films := make([]*domain.Film, 0, len(docs))
	for _, doc := range docs {
		films = append(films, doc.toDomain())
	}

	return films, nil
}

func (m *MongoFilmRepository) GetSchedule(ctx context.Context, filmID string) ([]domain.Session, error) {
	opts := options.FindOne().SetProjection(bson.M{"id": 1, "schedule": 1})

	var doc filmDocument

	err := m.films.FindOne(ctx, bson.M{"id": filmID}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	sessions := make([]domain.Session, 0, len(doc.Schedule))
	for _, s := range doc.Schedule {
		session, err := s.toDomain(filmID)
		if err != nil {
			return nil, err
		}

		sessions = append(sessions, session)
	}

	sortSessions(sessions)

	return sessions, nil
}

func (m *MongoFilmRepository) GetSession(ctx context.Context, filmID, sessionID string) (*domain.Session, error) {
	filter := bson.M{"id": filmID, "schedule.id": sessionID}
	opts := options.FindOne().SetProjection(bson.M{"id": 1, "schedule.$": 1})

	var doc filmDocument

	err := m.films.FindOne(ctx, filter, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	if len(doc.Schedule) == 0 {
		return nil, domain.ErrRecordNotFound
	}

	session, err := doc.Schedule[0].toDomain(filmID)
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// AddTakenSeats matches the session element only while none of keys is in its
// taken array and pushes through the positional operator, so the check and
// the write happen in one document update.
func (m *MongoFilmRepository) AddTakenSeats(ctx context.Context, filmID, sessionID string, keys []string) (bool, error) {
	filter := bson.M{
		"id": filmID,
		"schedule": bson.M{
			"$elemMatch": bson.M{
				"id":    sessionID,
				"taken": bson.M{"$nin": keys},
			},
		},
	}

	update := bson.M{
		"$push": bson.M{
			"schedule.$.taken": bson.M{"$each": keys},
		},
	}

	res, err := m.films.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}

	return res.ModifiedCount > 0, nil
}

func (m *MongoFilmRepository) Create(ctx context.Context, film *domain.Film) error {
	doc, err := newFilmDocument(film)
	if err != nil {
		return err
	}

	_, err = m.films.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrFilmAlreadyExists
		}

		return err
	}

	return nil
}

func newFilmDocument(film *domain.Film) (*filmDocument, error) {
	doc := &filmDocument{
		ID:          film.ID,
		Rating:      film.Rating,
		Director:    film.Director,
		Tags:        nonNilStrings(film.Tags),
		Title:       film.Title,
		About:       film.About,
		Description: film.Description,
		Image:       film.Image,
		Cover:       film.Cover,
		Schedule:    make([]sessionDocument, 0, len(film.Schedule)),
	}

	for _, s := range film.Schedule {
		price, err := primitive.ParseDecimal128(s.Price.String())
		if err != nil {
			return nil, fmt.Errorf("session %s price: %w", s.ID, err)
		}

		doc.Schedule = append(doc.Schedule, sessionDocument{
			ID:      s.ID,
			Daytime: s.Daytime.UTC(),
			Hall:    s.Hall,
			Rows:    s.Rows,
			Seats:   s.Seats,
			Price:   price,
			Taken:   nonNilStrings(s.Taken),
		})
	}

	return doc, nil
}

func (d filmDocument) toDomain() *domain.Film {
	return &domain.Film{
		ID:          d.ID,
		Rating:      d.Rating,
		Director:    d.Director,
		Tags:        nonNilStrings(d.Tags),
		Title:       d.Title,
		About:       d.About,
		Description: d.Description,
		Image:       d.Image,
		Cover:       d.Cover,
	}
}

func (d sessionDocument) toDomain(filmID string) (domain.Session, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return domain.Session{}, fmt.Errorf("session %s price: %w", d.ID, err)
	}

	return domain.Session{
		ID:      d.ID,
		FilmID:  filmID,
		Daytime: d.Daytime,
		Hall:    d.Hall,
		Rows:    d.Rows,
		Seats:   d.Seats,
		Price:   price,
		Taken:   nonNilStrings(d.Taken),
	}, nil
}
