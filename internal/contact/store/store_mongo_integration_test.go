//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"phonebook/pkg/testutil/containers"
)

type MongoStoreSuite struct {
	contractSuite
	mongo *containers.MongoContainer
}

func TestMongoStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	mc := containers.NewMongoContainer(t)
	ctx := context.Background()
	coll := mc.Client.Database("phonebook_test").Collection("people")

	s := &MongoStoreSuite{mongo: mc}
	s.newStore = func() Store { return NewMongo(coll, nil) }
	s.reset = func() {
		require.NoError(t, coll.Drop(ctx))
		require.NoError(t, NewMongo(coll, nil).EnsureIndexes(ctx))
	}
	s.unknownID = primitive.NewObjectID().Hex()
	s.malformeds = []string{"", "1", "not-an-object-id"}
	suite.Run(t, s)
}

// TestStoredDocumentShape verifies documents carry only _id, name and number.
func (s *MongoStoreSuite) TestStoredDocumentShape() {
	created := s.mustCreate("Arto Hellas", "040-123456")
	oid, err := primitive.ObjectIDFromHex(created.ID)
	s.Require().NoError(err)

	var raw bson.M
	coll := s.mongo.Client.Database("phonebook_test").Collection("people")
	s.Require().NoError(coll.FindOne(s.ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&raw))
	s.Len(raw, 3)
	s.Equal("Arto Hellas", raw["name"])
}
