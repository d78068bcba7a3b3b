package middlewarectx_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/model-catalog/internal/http/middlewarectx"
	jwtlib "github.com/magabrotheeeer/model-catalog/internal/lib/jwt"
)

type ParserMock struct {
	mock.Mock
}

func (m *ParserMock) ParseToken(tokenStr string) (*jwtlib.CustomClaims, error) {
	args := m.Called(tokenStr)
	claims, _ := args.Get(0).(*jwtlib.CustomClaims)
	return claims, args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func TestJWTMiddleware(t *testing.T) {
	tests := []struct {
		name         string
		authHeader   string
		mockSetup    func(m *ParserMock)
		wantStatus   int
		wantUsername string
	}{
		{
			name:       "валидный токен",
			authHeader: "Bearer good-token",
			mockSetup: func(m *ParserMock) {
				m.On("ParseToken", "good-token").
					Return(&jwtlib.CustomClaims{Username: "alice", Role: "user"}, nil)
			},
			wantStatus:   http.StatusOK,
			wantUsername: "alice",
		},
		{
			name:       "невалидный токен",
			authHeader: "Bearer bad-token",
			mockSetup: func(m *ParserMock) {
				m.On("ParseToken", "bad-token").
					Return(nil, assert.AnError)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "нет заголовка",
			authHeader: "",
			mockSetup:  func(_ *ParserMock) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "заголовок без Bearer",
			authHeader: "Token abc",
			mockSetup:  func(_ *ParserMock) {},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := new(ParserMock)
			tt.mockSetup(parser)

			var gotUsername string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUsername, _ = r.Context().Value(middlewarectx.User).(string)
				w.WriteHeader(http.StatusOK)
			})

			handler := middlewarectx.JWTMiddleware(parser, discardLogger())(next)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantUsername != "" {
				assert.Equal(t, tt.wantUsername, gotUsername)
			}
			parser.AssertExpectations(t)
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	tests := []struct {
		name         string
		authHeader   string
		mockSetup    func(m *ParserMock)
		wantStatus   int
		wantUsername string
	}{
		{
			name:       "анонимный запрос проходит",
			authHeader: "",
			mockSetup:  func(_ *ParserMock) {},
			wantStatus: http.StatusOK,
		},
		{
			name:       "валидный токен кладёт username в контекст",
			authHeader: "Bearer good-token",
			mockSetup: func(m *ParserMock) {
				m.On("ParseToken", "good-token").
					Return(&jwtlib.CustomClaims{Username: "bob", Role: "user"}, nil)
			},
			wantStatus:   http.StatusOK,
			wantUsername: "bob",
		},
		{
			name:       "невалидный токен отклоняется",
			authHeader: "Bearer bad-token",
			mockSetup: func(m *ParserMock) {
				m.On("ParseToken", "bad-token").
					Return(nil, assert.AnError)
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := new(ParserMock)
			tt.mockSetup(parser)

			var gotUsername string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUsername, _ = r.Context().Value(middlewarectx.User).(string)
				w.WriteHeader(http.StatusOK)
			})

			handler := middlewarectx.OptionalAuthMiddleware(parser, discardLogger())(next)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantUsername, gotUsername)
			parser.AssertExpectations(t)
		})
	}
}
