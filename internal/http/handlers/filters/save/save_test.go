package save

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/model-catalog/internal/filterstore"
	"github.com/magabrotheeeer/model-catalog/internal/http/middlewarectx"
)

// MockStore реализует интерфейс save.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Save(ctx context.Context, section filterstore.Section, username string, selection map[string]string) error {
	args := m.Called(ctx, section, username, selection)
	return args.Error(0)
}

func TestSaveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		section        string
		username       string
		body           string
		setupMock      func(*MockStore)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешное сохранение выборки",
			section:  "models",
			username: "alice",
			body:     `{"sort":"Newest","period":"Week"}`,
			setupMock: func(m *MockStore) {
				m.On("Save", mock.Anything, filterstore.SectionModels, "alice",
					map[string]string{"sort": "Newest", "period": "Week"}).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:           "без токена",
			section:        "models",
			username:       "",
			body:           `{}`,
			setupMock:      func(_ *MockStore) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:           "некорректное тело запроса",
			section:        "models",
			username:       "alice",
			body:           `{"sort":`,
			setupMock:      func(_ *MockStore) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:     "неизвестный раздел",
			section:  "gallery",
			username: "alice",
			body:     `{"sort":"Newest"}`,
			setupMock: func(m *MockStore) {
				m.On("Save", mock.Anything, filterstore.Section("gallery"), "alice",
					map[string]string{"sort": "Newest"}).Return(filterstore.ErrUnknownSection)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"unknown filter section"`,
		},
		{
			name:     "ошибка хранилища",
			section:  "apps",
			username: "alice",
			body:     `{"sort":"Most Used"}`,
			setupMock: func(m *MockStore) {
				m.On("Save", mock.Anything, filterstore.SectionApps, "alice",
					map[string]string{"sort": "Most Used"}).Return(errors.New("redis down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not save filter selection"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := new(MockStore)
			tt.setupMock(mockStore)

			handler := New(logger, mockStore)

			req := httptest.NewRequest(http.MethodPut, "/catalog/filters/"+tt.section, strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("section", tt.section)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.username != "" {
				ctx = context.WithValue(ctx, middlewarectx.User, tt.username)
			}
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockStore.AssertExpectations(t)
		})
	}
}
