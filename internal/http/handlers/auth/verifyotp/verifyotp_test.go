package verifyotp

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

	"github.com/novashelf/novashelf/internal/models"
	"github.com/novashelf/novashelf/internal/services/auth"
)

// Мок бизнес-логики верификации
type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) VerifyOTP(ctx context.Context, userUID, code string) (*auth.AuthResult, error) {
	args := m.Called(ctx, userUID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.AuthResult), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestVerifyOTPHandler_ServeHTTP(t *testing.T) {
	const userUID = "9b9e7a52-64a7-4e36-9e2c-2a1f42d0a111"

	result := &auth.AuthResult{
		Profile: models.PublicProfile{
			UID:   userUID,
			Name:  "Reader",
			Email: "reader@example.com",
			Role:  "reader",
		},
		Token: "signed-jwt",
	}

	tests := []struct {
		name           string
		requestBody    any
		mockResult     *auth.AuthResult
		mockErr        error
		wantMockCall   bool
		wantStatusCode int
		wantStatus     string
		wantError      string
	}{
		{
			name:           "valid code",
			requestBody:    Request{UserID: userUID, OTP: "123456"},
			mockResult:     result,
			wantMockCall:   true,
			wantStatusCode: http.StatusOK,
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
			name:           "validation error - not a uuid",
			requestBody:    Request{UserID: "42", OTP: "123456"},
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "field UserID can contain only uuid",
		},
		{
			name:           "validation error - non numeric code",
			requestBody:    Request{UserID: userUID, OTP: "12345a"},
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "field OTP can contain only numbers",
		},
		{
			name:           "unknown user",
			requestBody:    Request{UserID: userUID, OTP: "123456"},
			mockErr:        auth.ErrUserNotFound,
			wantMockCall:   true,
			wantStatusCode: http.StatusNotFound,
			wantStatus:     "Error",
			wantError:      "user not found",
		},
		{
			name:           "wrong or expired code",
			requestBody:    Request{UserID: userUID, OTP: "123456"},
			mockErr:        auth.ErrInvalidOTP,
			wantMockCall:   true,
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "invalid or expired otp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			if tt.wantMockCall {
				serviceMock.On("VerifyOTP", mock.Anything, userUID, "123456").
					Return(tt.mockResult, tt.mockErr).Once()
			}

			handler := New(newNoopLogger(), serviceMock)

			body, err := json.Marshal(tt.requestBody)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/verify-otp", bytes.NewReader(body))
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

			if tt.wantStatusCode == http.StatusOK {
				assert.Equal(t, "signed-jwt", resp.Data["token"])
				user, ok := resp.Data["user"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, userUID, user["id"])
				assert.Equal(t, "reader", user["role"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
