package store

import (
	"context"
	"strconv"
	"sync"

	"phonebook/internal/contact/models"
	"phonebook/pkg/platform/sentinel"
)

// InMemoryStore keeps contacts in insertion order and hands out sequential
// numeric ids. It is safe for concurrent use.
type InMemoryStore struct {
	mu       sync.RWMutex
	nextID   uint64
	contacts []*models.Contact
	byID     map[string]int
	byName   map[string]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		nextID: 1,
		byID:   make(map[string]int),
		byName: make(map[string]string),
	}
}

// SampleContacts is the phonebook the service ships with when seeding is on.
// Some numbers predate the current number format.
func SampleContacts() []models.Contact {
	return []models.Contact{
		{Name: "Arto Hellas", Number: "040-123456"},
		{Name: "Ada Lovelace", Number: "39-44-5323523"},
		{Name: "Dan Abramov", Number: "12-43-234345"},
		{Name: "Mary Poppendieck", Number: "39-23-6423122"},
	}
}

// Seed inserts contacts without validation, skipping names already present.
func (s *InMemoryStore) Seed(contacts ...models.Contact) {
	for i := range contacts {
		c := contacts[i]
		_ = s.Create(context.Background(), &c)
	}
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*models.Contact, error) {
	if err := parseSequentialID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.contacts[idx]
	return &cp, nil
}

func (s *InMemoryStore) Create(_ context.Context, contact *models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byName[contact.Name]; taken {
		return sentinel.ErrAlreadyUsed
	}
	contact.ID = strconv.FormatUint(s.nextID, 10)
	s.nextID++

	stored := *contact
	s.byID[stored.ID] = len(s.contacts)
	s.byName[stored.Name] = stored.ID
	s.contacts = append(s.contacts, &stored)
	return nil
}

func (s *InMemoryStore) UpdateNumber(_ context.Context, id, number string) (*models.Contact, error) {
	if err := parseSequentialID(id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	s.contacts[idx].Number = number
	cp := *s.contacts[idx]
	return &cp, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	if err := parseSequentialID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byID[id]
	if !ok {
		return nil
	}
	delete(s.byName, s.contacts[idx].Name)
	delete(s.byID, id)
	s.contacts = append(s.contacts[:idx], s.contacts[idx+1:]...)
	for i := idx; i < len(s.contacts); i++ {
		s.byID[s.contacts[i].ID] = i
	}
	return nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contacts), nil
}

func (s *InMemoryStore) Ping(_ context.Context) error {
	return nil
}

func (s *InMemoryStore) Close() error {
	return nil
}

// parseSequentialID accepts the canonical decimal form of a positive integer.
func parseSequentialID(id string) error {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 || strconv.FormatUint(n, 10) != id {
		return sentinel.ErrInvalidID
	}
	return nil
}
