//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"phonebook/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	contractSuite
	redis *containers.RedisContainer
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	s := &RedisStoreSuite{redis: rc}
	s.newStore = func() Store { return NewRedis(rc.Client, "phonebook_test") }
	s.reset = func() { require.NoError(t, rc.FlushAll(ctx)) }
	s.unknownID = "999"
	s.malformeds = []string{"", "abc", "0", "01"}
	suite.Run(t, s)
}

// TestDeleteReleasesName verifies the name index entry is removed with the record.
func (s *RedisStoreSuite) TestDeleteReleasesName() {
	created := s.mustCreate("Arto Hellas", "040-123456")
	s.Require().NoError(s.store.Delete(s.ctx, created.ID))

	exists, err := s.redis.Client.HExists(s.ctx, "phonebook_test:contact:names", "Arto Hellas").Result()
	s.Require().NoError(err)
	s.False(exists)

	s.mustCreate("Arto Hellas", "040-123456")
}
