package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"phonebook/internal/contact/handler/mocks"
	"phonebook/internal/contact/models"
	dErrors "phonebook/pkg/domain-errors"
	"phonebook/pkg/testutil"
)

func newMockRouter(t *testing.T) (http.Handler, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	r := chi.NewRouter()
	New(svc, logger).Register(r)
	return r, svc
}

func TestHandleList(t *testing.T) {
	t.Run("returns contacts", func(t *testing.T) {
		router, svc := newMockRouter(t)
		svc.EXPECT().List(gomock.Any()).Return([]*models.Contact{
			{ID: "1", Name: "Arto Hellas", Number: "040-123456"},
		}, nil)

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/persons", nil))

		testutil.AssertStatus(t, rr, http.StatusOK)
		got := testutil.UnmarshalResponse[[]models.Contact](t, rr)
		require.Len(t, *got, 1)
		assert.Equal(t, "Arto Hellas", (*got)[0].Name)
	})

	t.Run("empty store encodes an empty array", func(t *testing.T) {
		router, svc := newMockRouter(t)
		svc.EXPECT().List(gomock.Any()).Return(nil, nil)

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/persons", nil))

		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.JSONEq(t, "[]", rr.Body.String())
	})

	t.Run("store failure is a generic 500", func(t *testing.T) {
		router, svc := newMockRouter(t)
		svc.EXPECT().List(gomock.Any()).
			Return(nil, dErrors.Wrap(errors.New("connection reset"), dErrors.CodeInternal, "failed to list contacts"))

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/persons", nil))

		testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "internal_error")
		assert.NotContains(t, rr.Body.String(), "connection reset")
	})
}

func TestHandleGet(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "not found", err: dErrors.New(dErrors.CodeNotFound, "contact not found"), wantStatus: http.StatusNotFound, wantCode: "not_found"},
		{name: "malformed id", err: dErrors.New(dErrors.CodeBadRequest, "malformatted id"), wantStatus: http.StatusBadRequest, wantCode: "bad_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := newMockRouter(t)
			svc.EXPECT().Get(gomock.Any(), "abc").Return(nil, tt.err)

			rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/persons/abc", nil))

			testutil.AssertStatusAndError(t, rr, tt.wantStatus, tt.wantCode)
		})
	}

	t.Run("passes the path id to the service", func(t *testing.T) {
		router, svc := newMockRouter(t)
		svc.EXPECT().Get(gomock.Any(), "42").Return(&models.Contact{ID: "42", Name: "Dan Abramov", Number: "12-43234345"}, nil)

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/persons/42", nil))

		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, "42", testutil.UnmarshalResponse[models.Contact](t, rr).ID)
	})
}

func TestHandleCreate(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		router, svc := newMockRouter(t)
		svc.EXPECT().
			Create(gomock.Any(), &models.CreateContactRequest{Name: "Arto Hellas", Number: "040-123456"}).
			Return(&models.Contact{ID: "1", Name: "Arto Hellas", Number: "040-123456"}, nil)

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/persons",
			map[string]string{"name": "Arto Hellas", "number": "040-123456"}))

		testutil.AssertStatus(t, rr, http.StatusCreated)
		assert.JSONEq(t, `{"id":"1","name":"Arto Hellas","number":"040-123456"}`, rr.Body.String())
	})

	t.Run("malformed body never reaches the service", func(t *testing.T) {
		router, _ := newMockRouter(t)

		rr := testutil.DoRequest(router, testutil.NewRequestWithBody(t, http.MethodPost, "/api/persons", `{"name":`))

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("validation failure carries a description", func(t *testing.T) {
		router, svc := newMockRouter(t)
		svc.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeValidation, "name is missing"))

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/persons",
			map[string]string{"number": "040-123456"}))

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
		assert.Equal(t, "name is missing", testutil.UnmarshalErrorResponse(t, rr)["error_description"])
	})
}

func TestHandleUpdate(t *testing.T) {
	router, svc := newMockRouter(t)
	svc.EXPECT().
		Update(gomock.Any(), "7", &models.UpdateContactRequest{Number: "09-7654321"}).
		Return(&models.Contact{ID: "7", Name: "Ada Lovelace", Number: "09-7654321"}, nil)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPut, "/api/persons/7",
		map[string]string{"name": "Someone Else", "number": "09-7654321"}))

	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Equal(t, "Ada Lovelace", testutil.UnmarshalResponse[models.Contact](t, rr).Name)
}

func TestHandleDelete(t *testing.T) {
	router, svc := newMockRouter(t)
	svc.EXPECT().Delete(gomock.Any(), "7").Return(nil)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodDelete, "/api/persons/7", nil))

	testutil.AssertStatus(t, rr, http.StatusNoContent)
	assert.Empty(t, rr.Body.String())
}

func TestHandleInfo(t *testing.T) {
	router, svc := newMockRouter(t)
	svc.EXPECT().Info(gomock.Any()).Return("Phonebook has info for 2 people <br> now", nil)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/info", nil))

	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, "Phonebook has info for 2 people <br> now", rr.Body.String())
}
