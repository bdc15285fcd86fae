package ingest

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type runDocument struct {
	ID              string     `bson:"_id"`
	Kind            string     `bson:"kind"`
	Params          string     `bson:"params"`
	Status          string     `bson:"status"`
	StartedAt       time.Time  `bson:"startedAt"`
	FinishedAt      *time.Time `bson:"finishedAt,omitempty"`
	BooksScanned    int        `bson:"booksScanned"`
	BooksUpserted   int        `bson:"booksUpserted"`
	BooksDeleted    int        `bson:"booksDeleted"`
	AuthorsFetched  int        `bson:"authorsFetched"`
	AuthorsUpserted int        `bson:"authorsUpserted"`
	Error           string     `bson:"error,omitempty"`
}

func toDocument(run *Run) runDocument {
	return runDocument{
		ID:              run.ID,
		Kind:            string(run.Kind),
		Params:          run.Params,
		Status:          string(run.Status),
		StartedAt:       run.StartedAt,
		FinishedAt:      run.FinishedAt,
		BooksScanned:    run.BooksScanned,
		BooksUpserted:   run.BooksUpserted,
		BooksDeleted:    run.BooksDeleted,
		AuthorsFetched:  run.AuthorsFetched,
		AuthorsUpserted: run.AuthorsUpserted,
		Error:           run.Error,
	}
}

func (d runDocument) toRun() Run {
	return Run{
		ID:              d.ID,
		Kind:            Kind(d.Kind),
		Params:          d.Params,
		Status:          Status(d.Status),
		StartedAt:       d.StartedAt,
		FinishedAt:      d.FinishedAt,
		BooksScanned:    d.BooksScanned,
		BooksUpserted:   d.BooksUpserted,
		BooksDeleted:    d.BooksDeleted,
		AuthorsFetched:  d.AuthorsFetched,
		AuthorsUpserted: d.AuthorsUpserted,
		Error:           d.Error,
	}
}

// MongoRepo stores runs keyed by their ULID, which sorts by start time.
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
		Keys: bson.D{{Key: "kind", Value: 1}, {Key: "startedAt", Value: -1}},
	})
	return err
}

func (r *MongoRepo) CreateRun(ctx context.Context, run *Run) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	_, err := r.coll.InsertOne(ctx, toDocument(run))
	return err
}

func (r *MongoRepo) UpdateRun(ctx context.Context, run *Run) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": run.ID}, toDocument(run), options.Replace().SetUpsert(true))
	return err
}

func (r *MongoRepo) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var runs []Run
	for cur.Next(ctx) {
		var doc runDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		runs = append(runs, doc.toRun())
	}
	return runs, cur.Err()
}
