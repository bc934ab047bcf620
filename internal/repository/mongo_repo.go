package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/parisxmas/OxiDB/OxiAnketa/internal/models"
)

// MongoApplicationRepo stores applications in a MongoDB collection.
type MongoApplicationRepo struct {
	coll *mongo.Collection
}

func NewMongoApplicationRepo(database *mongo.Database) *MongoApplicationRepo {
	return &MongoApplicationRepo{coll: database.Collection(ApplicationsCollection)}
}

func (r *MongoApplicationRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "submittedAt", Value: -1}}},
		{Keys: bson.D{{Key: "phone", Value: 1}}},
	})
	return err
}

func (r *MongoApplicationRepo) Insert(ctx context.Context, app *models.Application) (string, error) {
	doc, err := applicationToDoc(app)
	if err != nil {
		return "", err
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("mongo: unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (r *MongoApplicationRepo) FindByID(ctx context.Context, id string) (*models.Application, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	var doc bson.M
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return docToApplication(fromBSON(doc))
}

func (r *MongoApplicationRepo) CountAndSample(ctx context.Context, limit int) (int, []models.Application, error) {
	total, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, nil, err
	}
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return 0, nil, err
	}
	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return 0, nil, err
	}
	docs := make([]map[string]any, 0, len(raw))
	for _, d := range raw {
		docs = append(docs, fromBSON(d))
	}
	apps, err := docsToApplications(docs)
	if err != nil {
		return 0, nil, err
	}
	return int(total), apps, nil
}

// fromBSON rewrites driver types into plain JSON-friendly values.
func fromBSON(doc bson.M) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = plainValue(v)
	}
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case primitive.A:
		list := make([]any, len(t))
		for i, item := range t {
			list[i] = plainValue(item)
		}
		return list
	case bson.M:
		return fromBSON(t)
	case primitive.DateTime:
		return t.Time().UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return v
}
