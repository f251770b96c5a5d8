package history

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/user/contactdesk-go/apperror"
	"github.com/user/contactdesk-go/auth"
)

type mockHistoryService struct {
	mock.Mock
}

func (m *mockHistoryService) Record(ctx context.Context, userID int64, description string) {
	m.Called(ctx, userID, description)
}

func (m *mockHistoryService) List(ctx context.Context, userID int64) ([]Entry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Entry), args.Error(1)
}

func (m *mockHistoryService) Clear(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func newTestRouter(svc Service, userID int64) http.Handler {
	r := chi.NewRouter()
	r.Route("/history", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := context.WithValue(req.Context(), auth.UserIDKey, userID)
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
		NewHandlers(svc).RegisterRoutes(r)
	})
	return r
}

func TestHandleGetHistory(t *testing.T) {
	t.Parallel()

	svc := &mockHistoryService{}
	svc.On("List", mock.Anything, int64(4)).Return([]Entry{
		{ID: 1, Description: "AddContact: Jane Doe, 0987654321", Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{ID: 2, Description: "GetAllContacts", Timestamp: time.Date(2024, 5, 1, 12, 1, 0, 0, time.UTC)},
	}, nil)

	router := newTestRouter(svc, 4)
	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AddContact: Jane Doe, 0987654321")
	assert.Contains(t, rec.Body.String(), "GetAllContacts")
}

func TestHandleGetHistory_Empty(t *testing.T) {
	t.Parallel()

	svc := &mockHistoryService{}
	svc.On("List", mock.Anything, int64(4)).Return([]Entry{}, nil)

	router := newTestRouter(svc, 4)
	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandleGetHistory_StoreFailure(t *testing.T) {
	t.Parallel()

	svc := &mockHistoryService{}
	svc.On("List", mock.Anything, int64(4)).
		Return(nil, apperror.NewDatabaseError("failed to list history", nil))

	router := newTestRouter(svc, 4)
	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleDeleteHistory(t *testing.T) {
	t.Parallel()

	svc := &mockHistoryService{}
	svc.On("Clear", mock.Anything, int64(4)).Return(nil)

	router := newTestRouter(svc, 4)
	req := httptest.NewRequest(http.MethodDelete, "/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestHandleDeleteHistory_IdempotentOnEmptyLog(t *testing.T) {
	t.Parallel()

	// Clearing an already-empty log is the same successful no-op.
	svc := &mockHistoryService{}
	svc.On("Clear", mock.Anything, int64(4)).Return(nil).Twice()

	router := newTestRouter(svc, 4)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodDelete, "/history", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
	svc.AssertExpectations(t)
}

func TestHistoryHandlers_NoPrincipal(t *testing.T) {
	t.Parallel()

	svc := &mockHistoryService{}
	r := chi.NewRouter()
	r.Route("/history", func(r chi.Router) {
		NewHandlers(svc).RegisterRoutes(r)
	})

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		req := httptest.NewRequest(method, "/history", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, method)
	}
	svc.AssertNotCalled(t, "List")
	svc.AssertNotCalled(t, "Clear")
}
