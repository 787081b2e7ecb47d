package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"phonebook/internal/contact/models"
	"phonebook/pkg/platform/sentinel"
	"phonebook/pkg/platform/tx"
)

const pgUniqueViolation = "23505"

// PostgresStore keeps each contact as a JSONB document keyed by a UUID.
type PostgresStore struct {
	db    *sql.DB
	table string
	index string
}

// contactDocument is the stored JSONB shape. The id lives in its own column.
type contactDocument struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

// NewPostgres constructs a PostgreSQL-backed contact store on table.
func NewPostgres(db *sql.DB, table string) *PostgresStore {
	return &PostgresStore{
		db:    db,
		table: pq.QuoteIdentifier(table),
		index: pq.QuoteIdentifier(table + "_name_key"),
	}
}

// EnsureSchema creates the contact table and its name index if missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + s.table + ` (
			id         uuid PRIMARY KEY,
			seq        bigserial NOT NULL,
			doc        jsonb NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ` + s.index + ` ON ` + s.table + ` ((doc->>'name'))`,
	}
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		q := s.querier(ctx)
		for _, stmt := range stmts {
			if _, err := q.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("ensure contact schema: %w", err)
			}
		}
		return nil
	})
}

// querier joins a transaction carried by ctx when there is one.
func (s *PostgresStore) querier(ctx context.Context) tx.Querier {
	return tx.QuerierFrom(ctx, s.db)
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Contact, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, `SELECT id, doc FROM `+s.table+` ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*models.Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return contacts, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.Contact, error) {
	contactID, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	row := s.querier(ctx).QueryRowContext(ctx, `SELECT id, doc FROM `+s.table+` WHERE id = $1`, contactID)
	contact, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find contact by id: %w", err)
	}
	return contact, nil
}

func (s *PostgresStore) Create(ctx context.Context, contact *models.Contact) error {
	doc, err := json.Marshal(contactDocument{Name: contact.Name, Number: contact.Number})
	if err != nil {
		return fmt.Errorf("marshal contact document: %w", err)
	}
	contactID := uuid.New()
	_, err = s.querier(ctx).ExecContext(ctx, `INSERT INTO `+s.table+` (id, doc) VALUES ($1, $2)`, contactID, doc)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert contact: %w", err)
	}
	contact.ID = contactID.String()
	return nil
}

func (s *PostgresStore) UpdateNumber(ctx context.Context, id, number string) (*models.Contact, error) {
	contactID, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	row := s.querier(ctx).QueryRowContext(ctx,
		`UPDATE `+s.table+` SET doc = jsonb_set(doc, '{number}', to_jsonb($2::text)) WHERE id = $1 RETURNING id, doc`,
		contactID, number)
	contact, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("update contact number: %w", err)
	}
	return contact, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	contactID, err := parseUUID(id)
	if err != nil {
		return err
	}
	if _, err := s.querier(ctx).ExecContext(ctx, `DELETE FROM `+s.table+` WHERE id = $1`, contactID); err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.querier(ctx).QueryRowContext(ctx, `SELECT count(*) FROM `+s.table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*models.Contact, error) {
	var (
		contactID uuid.UUID
		raw       []byte
	)
	if err := row.Scan(&contactID, &raw); err != nil {
		return nil, err
	}
	var doc contactDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal contact document: %w", err)
	}
	return &models.Contact{ID: contactID.String(), Name: doc.Name, Number: doc.Number}, nil
}

func parseUUID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil || parsed == uuid.Nil {
		return uuid.Nil, sentinel.ErrInvalidID
	}
	return parsed, nil
}
