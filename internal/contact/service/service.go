package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"phonebook/internal/contact/metrics"
	"phonebook/internal/contact/models"
	dErrors "phonebook/pkg/domain-errors"
	"phonebook/pkg/platform/sentinel"
	"phonebook/pkg/requestcontext"
)

// InfoTimeLayout renders the info timestamp the way browsers print dates.
const InfoTimeLayout = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"

// Store is the record store the service delegates persistence to.
type Store interface {
	List(ctx context.Context) ([]*models.Contact, error)
	FindByID(ctx context.Context, id string) (*models.Contact, error)
	Create(ctx context.Context, contact *models.Contact) error
	UpdateNumber(ctx context.Context, id, number string) (*models.Contact, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

// Service orchestrates validation and store calls for contact operations.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// New constructs a Service.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer("phonebook/contact"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every contact in store order.
func (s *Service) List(ctx context.Context) (contacts []*models.Contact, err error) {
	ctx, span := s.tracer.Start(ctx, "contact.List")
	defer func() { endSpan(span, err) }()

	start := time.Now()
	contacts, err = s.store.List(ctx)
	s.observeStore("list", start)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list contacts")
	}
	span.SetAttributes(attribute.Int("contact.count", len(contacts)))
	return contacts, nil
}

// Get returns the contact with the given id.
func (s *Service) Get(ctx context.Context, id string) (contact *models.Contact, err error) {
	ctx, span := s.tracer.Start(ctx, "contact.Get", trace.WithAttributes(attribute.String("contact.id", id)))
	defer func() { endSpan(span, err) }()

	start := time.Now()
	contact, err = s.store.FindByID(ctx, id)
	s.observeStore("find", start)
	if err != nil {
		return nil, translateStoreError(err, "failed to load contact")
	}
	return contact, nil
}

// Create validates the candidate and persists it. The store assigns the id.
func (s *Service) Create(ctx context.Context, req *models.CreateContactRequest) (contact *models.Contact, err error) {
	ctx, span := s.tracer.Start(ctx, "contact.Create")
	defer func() { endSpan(span, err) }()

	req.Normalize()
	if err := models.Validate(req.Name, req.Number); err != nil {
		return nil, s.validationFailed(err)
	}

	contact = &models.Contact{Name: req.Name, Number: req.Number}
	start := time.Now()
	err = s.store.Create(ctx, contact)
	s.observeStore("create", start)
	if err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.Wrap(err, dErrors.CodeDuplicateName,
				fmt.Sprintf("%s is already on the Phonebook", req.Name))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create contact")
	}

	span.SetAttributes(attribute.String("contact.id", contact.ID))
	s.logger.InfoContext(ctx, "contact created",
		"request_id", requestcontext.RequestID(ctx),
		"contact_id", contact.ID,
	)
	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	return contact, nil
}

// Update replaces the number of an existing contact. Name and id never change.
func (s *Service) Update(ctx context.Context, id string, req *models.UpdateContactRequest) (contact *models.Contact, err error) {
	ctx, span := s.tracer.Start(ctx, "contact.Update", trace.WithAttributes(attribute.String("contact.id", id)))
	defer func() { endSpan(span, err) }()

	req.Normalize()
	if err := models.ValidateNumber(req.Number); err != nil {
		return nil, s.validationFailed(err)
	}

	start := time.Now()
	contact, err = s.store.UpdateNumber(ctx, id, req.Number)
	s.observeStore("update", start)
	if err != nil {
		return nil, translateStoreError(err, "failed to update contact")
	}

	s.logger.InfoContext(ctx, "contact number updated",
		"request_id", requestcontext.RequestID(ctx),
		"contact_id", contact.ID,
	)
	if s.metrics != nil {
		s.metrics.IncrementUpdated()
	}
	return contact, nil
}

// Delete removes the contact if present. Unknown and malformed ids are not
// errors: the record is absent either way.
func (s *Service) Delete(ctx context.Context, id string) (err error) {
	ctx, span := s.tracer.Start(ctx, "contact.Delete", trace.WithAttributes(attribute.String("contact.id", id)))
	defer func() { endSpan(span, err) }()

	start := time.Now()
	err = s.store.Delete(ctx, id)
	s.observeStore("delete", start)
	if err != nil && !errors.Is(err, sentinel.ErrInvalidID) && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete contact")
	}

	s.logger.InfoContext(ctx, "contact deleted",
		"request_id", requestcontext.RequestID(ctx),
		"contact_id", id,
	)
	if s.metrics != nil {
		s.metrics.IncrementDeleted()
	}
	return nil
}

// Info summarizes the phonebook size at the request time.
func (s *Service) Info(ctx context.Context) (info string, err error) {
	ctx, span := s.tracer.Start(ctx, "contact.Info")
	defer func() { endSpan(span, err) }()

	start := time.Now()
	n, err := s.store.Count(ctx)
	s.observeStore("count", start)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to count contacts")
	}
	now := requestcontext.Now(ctx)
	return fmt.Sprintf("Phonebook has info for %d people <br> %s", n, now.Format(InfoTimeLayout)), nil
}

// Health reports whether the store is reachable.
func (s *Service) Health(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "record store unreachable")
	}
	return nil
}

func (s *Service) validationFailed(err error) error {
	var verr *models.ValidationError
	if errors.As(err, &verr) && s.metrics != nil {
		for _, p := range verr.Problems {
			s.metrics.IncrementValidationFailure(string(p.Kind))
		}
	}
	return dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
}

func (s *Service) observeStore(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveStore(operation, start)
	}
}

func translateStoreError(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "contact not found")
	case errors.Is(err, sentinel.ErrInvalidID):
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "malformatted id")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
