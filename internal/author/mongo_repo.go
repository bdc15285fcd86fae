package author

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type authorDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Biography     string             `bson:"biography"`
	ImageURL      string             `bson:"imageURL"`
	GenresWritten []string           `bson:"genresWritten"`
	Themes        []string           `bson:"themes"`
	WritingStyle  []string           `bson:"writingStyle"`
	Tone          []string           `bson:"tone"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func (d authorDocument) toAuthor() Author {
	return Author{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		Biography:     d.Biography,
		ImageURL:      d.ImageURL,
		GenresWritten: d.GenresWritten,
		Themes:        d.Themes,
		WritingStyle:  d.WritingStyle,
		Tone:          d.Tone,
		UpdatedAt:     d.UpdatedAt,
	}
}

type MongoRepo struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewMongoRepo(db *mongo.Database, collection string, timeout time.Duration) *MongoRepo {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MongoRepo{coll: db.Collection(collection), timeout: timeout}
}

func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *MongoRepo) GetByName(ctx context.Context, name string) (Author, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc authorDocument
	if err := r.coll.FindOne(ctx, bson.M{"name": name}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Author{}, ErrNotFound
		}
		return Author{}, err
	}
	return doc.toAuthor(), nil
}

func (r *MongoRepo) Create(ctx context.Context, a *Author) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := authorDocument{
		Name:          a.Name,
		Biography:     a.Biography,
		ImageURL:      a.ImageURL,
		GenresWritten: nonNil(a.GenresWritten),
		Themes:        nonNil(a.Themes),
		WritingStyle:  nonNil(a.WritingStyle),
		Tone:          nonNil(a.Tone),
		UpdatedAt:     time.Now().UTC(),
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid.Hex()
	}
	a.UpdatedAt = doc.UpdatedAt
	return nil
}

func (r *MongoRepo) Update(ctx context.Context, a *Author) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	now := time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, bson.M{"name": a.Name}, bson.M{"$set": bson.M{
		"biography":     a.Biography,
		"imageURL":      a.ImageURL,
		"genresWritten": nonNil(a.GenresWritten),
		"themes":        nonNil(a.Themes),
		"writingStyle":  nonNil(a.WritingStyle),
		"tone":          nonNil(a.Tone),
		"updatedAt":     now,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	a.UpdatedAt = now
	return nil
}
