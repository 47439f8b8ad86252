package register

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/novashelf/novashelf/internal/services/auth"
)

// Мок бизнес-логики регистрации
type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Register(ctx context.Context, name, email, password, role string) (*auth.RegisterResult, error) {
	args := m.Called(ctx, name, email, password, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.RegisterResult), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	result := &auth.RegisterResult{
		UserUID:              "9b9e7a52-64a7-4e36-9e2c-2a1f42d0a111",
		Email:                "reader@example.com",
		Role:                 "reader",
		RequiresVerification: true,
	}

	tests := []struct {
		name           string
		requestBody    any
		mockResult     *auth.RegisterResult
		mockErr        error
		wantMockCall   bool
		wantStatusCode int
		wantStatus     string
		wantError      string
	}{
		{
			name: "valid registration",
			requestBody: Request{
				Name:     "Reader",
				Email:    "reader@example.com",
				Password: "password123",
			},
			mockResult:     result,
			wantMockCall:   true,
			wantStatusCode: http.StatusCreated,
			wantStatus:     "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "invalid request body",
		},
		{
			name: "validation error - missing password",
			requestBody: Request{
				Name:  "Reader",
				Email: "reader@example.com",
			},
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "field Password is a required field",
		},
		{
			name: "validation error - bad email",
			requestBody: Request{
				Name:     "Reader",
				Email:    "not-an-email",
				Password: "password123",
			},
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "field Email must be a valid email address",
		},
		{
			name: "email already taken",
			requestBody: Request{
				Name:     "Reader",
				Email:    "reader@example.com",
				Password: "password123",
			},
			mockErr:        auth.ErrEmailTaken,
			wantMockCall:   true,
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "user already exists",
		},
		{
			name: "otp delivery failure",
			requestBody: Request{
				Name:     "Reader",
				Email:    "reader@example.com",
				Password: "password123",
			},
			mockErr:        auth.ErrDeliveryFailed,
			wantMockCall:   true,
			wantStatusCode: http.StatusInternalServerError,
			wantStatus:     "Error",
			wantError:      "failed to send verification email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			if tt.wantMockCall {
				serviceMock.On("Register", mock.Anything, "Reader", "reader@example.com", "password123", "").
					Return(tt.mockResult, tt.mockErr).Once()
			}

			handler := New(newNoopLogger(), serviceMock)

			body, err := json.Marshal(tt.requestBody)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var resp struct {
				Status string         `json:"status"`
				Error  string         `json:"error"`
				Data   map[string]any `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			if tt.wantError != "" {
				assert.Contains(t, resp.Error, tt.wantError)
			}

			if tt.wantStatusCode == http.StatusCreated {
				assert.Equal(t, result.UserUID, resp.Data["userId"])
				assert.Equal(t, result.Email, resp.Data["email"])
				assert.Equal(t, "reader", resp.Data["role"])
				assert.Equal(t, true, resp.Data["requiresVerification"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
