package store

import (
	"context"
	"sort"
	"sync"

	"github.com/stretchr/testify/suite"

	"phonebook/internal/contact/models"
	"phonebook/pkg/platform/sentinel"
)

// contractSuite is the behaviour every backend must share. Backend suites
// embed it and set newStore; reset must leave the backend empty.
type contractSuite struct {
	suite.Suite
	ctx        context.Context
	store      Store
	newStore   func() Store
	reset      func()
	unknownID  string
	malformeds []string
}

func (s *contractSuite) SetupTest() {
	s.ctx = context.Background()
	if s.reset != nil {
		s.reset()
	}
	s.store = s.newStore()
}

func (s *contractSuite) mustCreate(name, number string) *models.Contact {
	c := &models.Contact{Name: name, Number: number}
	s.Require().NoError(s.store.Create(s.ctx, c))
	s.Require().NotEmpty(c.ID)
	return c
}

func (s *contractSuite) TestCreateAndFind() {
	created := s.mustCreate("Arto Hellas", "040-123456")

	found, err := s.store.FindByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created, found)

	s.Run("unknown id", func() {
		_, err := s.store.FindByID(s.ctx, s.unknownID)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("malformed ids", func() {
		for _, id := range s.malformeds {
			_, err := s.store.FindByID(s.ctx, id)
			s.ErrorIs(err, sentinel.ErrInvalidID, id)
		}
	})
}

func (s *contractSuite) TestUniqueNames() {
	s.mustCreate("Arto Hellas", "040-123456")

	err := s.store.Create(s.ctx, &models.Contact{Name: "Arto Hellas", Number: "09-1234556"})
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	n, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *contractSuite) TestListKeepsInsertionOrder() {
	names := []string{"Arto Hellas", "Ada Lovelace", "Dan Abramov"}
	for _, name := range names {
		s.mustCreate(name, "040-123456")
	}

	contacts, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(contacts, len(names))
	for i, c := range contacts {
		s.Equal(names[i], c.Name)
	}
}

func (s *contractSuite) TestUpdateNumber() {
	created := s.mustCreate("Arto Hellas", "040-123456")

	updated, err := s.store.UpdateNumber(s.ctx, created.ID, "09-7654321")
	s.Require().NoError(err)
	s.Equal(created.ID, updated.ID)
	s.Equal("Arto Hellas", updated.Name)
	s.Equal("09-7654321", updated.Number)

	_, err = s.store.UpdateNumber(s.ctx, s.unknownID, "09-7654321")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *contractSuite) TestDeleteIsIdempotent() {
	created := s.mustCreate("Arto Hellas", "040-123456")

	s.Require().NoError(s.store.Delete(s.ctx, created.ID))
	_, err := s.store.FindByID(s.ctx, created.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.NoError(s.store.Delete(s.ctx, created.ID))
	s.NoError(s.store.Delete(s.ctx, s.unknownID))

	n, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *contractSuite) TestConcurrentCreatesGetDistinctIDs() {
	const writers = 20
	names := []string{
		"Contact Alpha", "Contact Bravo", "Contact Charlie", "Contact Delta", "Contact Echo",
		"Contact Foxtrot", "Contact Golf", "Contact Hotel", "Contact India", "Contact Juliett",
		"Contact Kilo", "Contact Lima", "Contact Mike", "Contact November", "Contact Oscar",
		"Contact Papa", "Contact Quebec", "Contact Romeo", "Contact Sierra", "Contact Tango",
	}

	var wg sync.WaitGroup
	ids := make([]string, writers)
	errs := make([]error, writers)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := &models.Contact{Name: names[i], Number: "040-123456"}
			errs[i] = s.store.Create(s.ctx, c)
			ids[i] = c.ID
		}()
	}
	wg.Wait()

	for _, err := range errs {
		s.Require().NoError(err)
	}
	sort.Strings(ids)
	for i := 1; i < len(ids); i++ {
		s.NotEqual(ids[i-1], ids[i])
	}
}

func (s *contractSuite) TestPing() {
	s.NoError(s.store.Ping(s.ctx))
}
