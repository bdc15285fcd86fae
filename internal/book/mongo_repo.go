package book

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bookfeed/internal/normalize"
)

type bookDocument struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	ISBN                string             `bson:"ISBN"`
	Title               string             `bson:"title"`
	Subtitle            string             `bson:"subtitle,omitempty"`
	Authors             []string           `bson:"authors"`
	Publisher           string             `bson:"publisher,omitempty"`
	PublishedDate       *time.Time         `bson:"publishedDate"`
	PublishedPrecision  string             `bson:"publishedPrecision,omitempty"`
	PageCount           *int               `bson:"pagecount,omitempty"`
	Genres              []string           `bson:"genres"`
	MainGenre           string             `bson:"mainGenre"`
	Description         string             `bson:"description"`
	CoverImage          string             `bson:"coverImage"`
	Themes              []string           `bson:"themes"`
	WritingStyle        []string           `bson:"writingStyle"`
	Tone                []string           `bson:"tone"`
	Keywords            []string           `bson:"keywords,omitempty"`
	AmazonAffiliateLink string             `bson:"amazonAffiliateLink"`
	FavoriteCount       int                `bson:"favoriteCount"`
	UpdatedAt           time.Time          `bson:"updatedAt"`
}

func toDocument(b *Book) bookDocument {
	d := bookDocument{
		ISBN:                b.ISBN,
		Title:               b.Title,
		Subtitle:            b.Subtitle,
		Authors:             nonNil(b.Authors),
		Publisher:           b.Publisher,
		PageCount:           b.PageCount,
		Genres:              nonNil(b.Genres),
		MainGenre:           b.MainGenre,
		Description:         b.Description,
		CoverImage:          b.CoverImage,
		Themes:              nonNil(b.Themes),
		WritingStyle:        nonNil(b.WritingStyle),
		Tone:                nonNil(b.Tone),
		Keywords:            b.Keywords,
		AmazonAffiliateLink: b.AmazonAffiliateLink,
		FavoriteCount:       b.FavoriteCount,
	}
	if !b.PublishedDate.IsZero() {
		t := b.PublishedDate.Time
		d.PublishedDate = &t
		d.PublishedPrecision = string(b.PublishedDate.Precision)
	}
	return d
}

func (d bookDocument) toBook() Book {
	b := Book{
		ID:                  d.ID.Hex(),
		ISBN:                d.ISBN,
		Title:               d.Title,
		Subtitle:            d.Subtitle,
		Authors:             d.Authors,
		Publisher:           d.Publisher,
		PageCount:           d.PageCount,
		Genres:              d.Genres,
		MainGenre:           d.MainGenre,
		Description:         d.Description,
		CoverImage:          d.CoverImage,
		Themes:              d.Themes,
		WritingStyle:        d.WritingStyle,
		Tone:                d.Tone,
		Keywords:            d.Keywords,
		AmazonAffiliateLink: d.AmazonAffiliateLink,
		FavoriteCount:       d.FavoriteCount,
		UpdatedAt:           d.UpdatedAt,
	}
	if d.PublishedDate != nil {
		b.PublishedDate = normalize.DateFromParts(*d.PublishedDate, d.PublishedPrecision)
	}
	return b
}

// MongoRepo stores books in a MongoDB collection, one document per ISBN.
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

func (r *MongoRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// EnsureIndexes creates the unique ISBN index and the lookup indexes used by
// the dedupe and retention queries.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "ISBN", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "title", Value: 1}, {Key: "authors", Value: 1}}},
		{Keys: bson.D{{Key: "publishedDate", Value: 1}}},
	})
	return err
}

func (r *MongoRepo) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var doc bookDocument
	if err := r.coll.FindOne(ctx, bson.M{"ISBN": isbn}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return doc.toBook(), nil
}

func (r *MongoRepo) ExistsByTitleAuthors(ctx context.Context, title string, authors []string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"title": title, "authors": nonNil(authors)}, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *MongoRepo) Upsert(ctx context.Context, b *Book) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	doc := toDocument(b)
	doc.UpdatedAt = time.Now().UTC()
	opts := options.FindOneAndReplace().SetUpsert(true).SetReturnDocument(options.After)

	var saved bookDocument
	if err := r.coll.FindOneAndReplace(ctx, bson.M{"ISBN": b.ISBN}, doc, opts).Decode(&saved); err != nil {
		return err
	}
	b.ID = saved.ID.Hex()
	b.UpdatedAt = saved.UpdatedAt
	return nil
}

func (r *MongoRepo) Delete(ctx context.Context, isbn string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"ISBN": isbn})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) List(ctx context.Context, q Query) ([]Book, int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if q.Genre != "" {
		filter["genres"] = q.Genre
	}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	opts := options.Find().SetSort(bson.D{{Key: "ISBN", Value: 1}}).SetLimit(int64(limit))
	if q.AfterISBN != "" {
		filter["ISBN"] = bson.M{"$gt": q.AfterISBN}
	} else if q.Offset > 0 {
		opts.SetSkip(int64(q.Offset))
	}

	out, err := r.find(ctx, filter, opts)
	return out, int(total), err
}

func (r *MongoRepo) ListPublishedBefore(ctx context.Context, cutoff time.Time) ([]Book, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "ISBN", Value: 1}})
	return r.find(ctx, bson.M{"publishedDate": bson.M{"$lt": cutoff}}, opts)
}

func (r *MongoRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]Book, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Book
	for cur.Next(ctx) {
		var doc bookDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toBook())
	}
	return out, cur.Err()
}
