package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"phonebook/internal/contact/models"
	"phonebook/internal/platform/middleware"
	dErrors "phonebook/pkg/domain-errors"
	"phonebook/pkg/platform/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/service_mock.go -package=mocks Service

// Service defines the contact operations the handler delegates to.
type Service interface {
	List(ctx context.Context) ([]*models.Contact, error)
	Get(ctx context.Context, id string) (*models.Contact, error)
	Create(ctx context.Context, req *models.CreateContactRequest) (*models.Contact, error)
	Update(ctx context.Context, id string, req *models.UpdateContactRequest) (*models.Contact, error)
	Delete(ctx context.Context, id string) error
	Info(ctx context.Context) (string, error)
}

// Handler is the thin HTTP layer over the contact service. It only decodes
// requests, encodes responses and hands errors to httputil.WriteError.
type Handler struct {
	logger   *slog.Logger
	contacts Service
}

// New creates a new contact Handler.
func New(contacts Service, logger *slog.Logger) *Handler {
	return &Handler{contacts: contacts, logger: logger}
}

// Register registers the contact routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/info", h.handleInfo)
		r.Route("/persons", func(r chi.Router) {
			r.Get("/", h.handleList)
			r.Post("/", h.handleCreate)
			r.Get("/{id}", h.handleGet)
			r.Put("/{id}", h.handleUpdate)
			r.Delete("/{id}", h.handleDelete)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.List(r.Context())
	if err != nil {
		h.writeError(w, r, err, "list contacts")
		return
	}
	if contacts == nil {
		contacts = []*models.Contact{}
	}
	httputil.WriteJSON(w, http.StatusOK, contacts)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	contact, err := h.contacts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err, "get contact")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, contact)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateContactRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err, "create contact")
		return
	}

	contact, err := h.contacts.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err, "create contact")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, contact)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateContactRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err, "update contact")
		return
	}

	contact, err := h.contacts.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.writeError(w, r, err, "update contact")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, contact)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.contacts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err, "delete contact")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.contacts.Info(r.Context())
	if err != nil {
		h.writeError(w, r, err, "phonebook info")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(info))
}

// writeError logs client errors at warn and everything else at error, then
// writes the JSON error envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	ctx := r.Context()
	level := slog.LevelError
	if httputil.ToHTTPStatus(codeOf(err)) < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	h.logger.Log(ctx, level, op+" failed",
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
	httputil.WriteError(w, err)
}

func codeOf(err error) dErrors.Code {
	if de, ok := dErrors.As(err); ok {
		return de.Code
	}
	return dErrors.CodeInternal
}
