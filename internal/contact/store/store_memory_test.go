package store

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"phonebook/internal/platform/config"
)

type InMemoryStoreSuite struct {
	contractSuite
}

func TestInMemoryStoreSuite(t *testing.T) {
	s := new(InMemoryStoreSuite)
	s.newStore = func() Store { return NewInMemoryStore() }
	s.unknownID = "999"
	s.malformeds = []string{"", "abc", "0", "-1", "01", "1.5"}
	suite.Run(t, s)
}

func (s *InMemoryStoreSuite) TestIDsAreSequential() {
	first := s.mustCreate("Arto Hellas", "040-123456")
	second := s.mustCreate("Ada Lovelace", "09-1234556")
	s.Equal("1", first.ID)
	s.Equal("2", second.ID)

	// ids are never reused after a delete
	s.Require().NoError(s.store.Delete(s.ctx, second.ID))
	third := s.mustCreate("Dan Abramov", "12-43234345")
	s.Equal("3", third.ID)
}

func (s *InMemoryStoreSuite) TestReturnedRecordsAreCopies() {
	created := s.mustCreate("Arto Hellas", "040-123456")

	found, err := s.store.FindByID(s.ctx, created.ID)
	s.Require().NoError(err)
	found.Number = "mutated"

	again, err := s.store.FindByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("040-123456", again.Number)
}

func TestSeed(t *testing.T) {
	s := NewInMemoryStore()
	s.Seed(SampleContacts()...)
	s.Seed(SampleContacts()...)

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(SampleContacts()), n)

	first, err := s.FindByID(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Arto Hellas", first.Name)
}

func TestOpen(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("memory with seed", func(t *testing.T) {
		st, err := Open(context.Background(), config.Config{StoreURL: "memory://", Seed: true}, logger)
		require.NoError(t, err)
		t.Cleanup(func() { _ = st.Close() })

		require.IsType(t, &InMemoryStore{}, st)
		n, err := st.Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, len(SampleContacts()), n)
	})

	t.Run("memory without seed starts empty", func(t *testing.T) {
		st, err := Open(context.Background(), config.Config{StoreURL: "memory://"}, logger)
		require.NoError(t, err)

		n, err := st.Count(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		_, err := Open(context.Background(), config.Config{StoreURL: "mysql://localhost/phonebook"}, logger)
		assert.Error(t, err)
	})
}
