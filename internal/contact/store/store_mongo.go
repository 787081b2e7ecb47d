package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"phonebook/internal/contact/models"
	"phonebook/pkg/platform/sentinel"
)

// MongoStore persists contacts as documents in a MongoDB collection.
// Ids are the hex form of the document ObjectID.
type MongoStore struct {
	coll  *mongo.Collection
	close func() error
}

type mongoContact struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Name   string             `bson:"name"`
	Number string             `bson:"number"`
}

func (d mongoContact) toModel() *models.Contact {
	return &models.Contact{ID: d.ID.Hex(), Name: d.Name, Number: d.Number}
}

// NewMongo constructs a MongoDB-backed contact store. closeFn releases the
// underlying client and may be nil.
func NewMongo(coll *mongo.Collection, closeFn func() error) *MongoStore {
	return &MongoStore{coll: coll, close: closeFn}
}

// EnsureIndexes creates the unique index on contact names.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure contact indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]*models.Contact, error) {
	cursor, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	var docs []mongoContact
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode contacts: %w", err)
	}
	contacts := make([]*models.Contact, 0, len(docs))
	for _, d := range docs {
		contacts = append(contacts, d.toModel())
	}
	return contacts, nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*models.Contact, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	var doc mongoContact
	if err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find contact by id: %w", err)
	}
	return doc.toModel(), nil
}

func (s *MongoStore) Create(ctx context.Context, contact *models.Contact) error {
	doc := mongoContact{ID: primitive.NewObjectID(), Name: contact.Name, Number: contact.Number}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert contact: %w", err)
	}
	contact.ID = doc.ID.Hex()
	return nil
}

func (s *MongoStore) UpdateNumber(ctx context.Context, id, number string) (*models.Contact, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	var doc mongoContact
	err = s.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "number", Value: number}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("update contact number: %w", err)
	}
	return doc.toModel(), nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}}); err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}

func (s *MongoStore) Count(ctx context.Context) (int, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return int(n), nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.coll.Database().Client().Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, sentinel.ErrInvalidID
	}
	return oid, nil
}
