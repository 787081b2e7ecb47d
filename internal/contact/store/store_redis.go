package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"phonebook/internal/contact/models"
	"phonebook/pkg/platform/sentinel"
)

// RedisStore keeps each contact in a hash. A sorted set scored by id keeps
// insertion order and a name hash enforces unique names.
//
// Keys, for prefix "phonebook":
//   - phonebook:contact:seq      INCR counter for ids
//   - phonebook:contact:<id>     hash {name, number}
//   - phonebook:contacts         zset of ids
//   - phonebook:contact:names    hash name -> id
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedis constructs a Redis-backed contact store with keys under prefix.
func NewRedis(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "phonebook"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) seqKey() string { return s.prefix + ":contact:seq" }
func (s *RedisStore) indexKey() string { return s.prefix + ":contacts" }
func (s *RedisStore) namesKey() string { return s.prefix + ":contact:names" }
func (s *RedisStore) contactKey(id string) string { return s.prefix + ":contact:" + id }

func (s *RedisStore) List(ctx context.Context) ([]*models.Contact, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list contact ids: %w", err)
	}
	if len(ids) == 0 {
		return []*models.Contact{}, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, s.contactKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}

	contacts := make([]*models.Contact, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			// deleted between ZRANGE and HGETALL
			continue
		}
		contacts = append(contacts, &models.Contact{ID: ids[i], Name: fields["name"], Number: fields["number"]})
	}
	return contacts, nil
}

func (s *RedisStore) FindByID(ctx context.Context, id string) (*models.Contact, error) {
	if err := parseSequentialID(id); err != nil {
		return nil, err
	}
	fields, err := s.client.HGetAll(ctx, s.contactKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("find contact by id: %w", err)
	}
	if len(fields) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return &models.Contact{ID: id, Name: fields["name"], Number: fields["number"]}, nil
}

func (s *RedisStore) Create(ctx context.Context, contact *models.Contact) error {
	seq, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("allocate contact id: %w", err)
	}
	id := strconv.FormatInt(seq, 10)

	claimed, err := s.client.HSetNX(ctx, s.namesKey(), contact.Name, id).Result()
	if err != nil {
		return fmt.Errorf("claim contact name: %w", err)
	}
	if !claimed {
		return sentinel.ErrAlreadyUsed
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.contactKey(id), "name", contact.Name, "number", contact.Number)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(seq), Member: id})
		return nil
	})
	if err != nil {
		s.client.HDel(ctx, s.namesKey(), contact.Name)
		return fmt.Errorf("insert contact: %w", err)
	}
	contact.ID = id
	return nil
}

func (s *RedisStore) UpdateNumber(ctx context.Context, id, number string) (*models.Contact, error) {
	if err := parseSequentialID(id); err != nil {
		return nil, err
	}
	key := s.contactKey(id)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return sentinel.ErrNotFound
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, "number", number)
			return nil
		})
		return err
	}, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update contact number: %w", err)
	}
	return s.FindByID(ctx, id)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := parseSequentialID(id); err != nil {
		return err
	}
	name, err := s.client.HGet(ctx, s.contactKey(id), "name").Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load contact for delete: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.contactKey(id))
		pipe.ZRem(ctx, s.indexKey(), id)
		pipe.HDel(ctx, s.namesKey(), name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, s.indexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return int(n), nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
