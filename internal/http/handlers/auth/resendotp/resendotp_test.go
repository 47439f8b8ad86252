package resendotp

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

// Мок бизнес-логики повторной отправки кода
type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ResendOTP(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestResendOTPHandler_ServeHTTP(t *testing.T) {
	const userUID = "9b9e7a52-64a7-4e36-9e2c-2a1f42d0a111"

	tests := []struct {
		name           string
		requestBody    any
		mockErr        error
		wantMockCall   bool
		wantStatusCode int
		wantStatus     string
		wantError      string
	}{
		{
			name:           "code resent",
			requestBody:    Request{UserID: userUID},
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
			requestBody:    Request{UserID: "42"},
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "field UserID can contain only uuid",
		},
		{
			name:           "unknown user",
			requestBody:    Request{UserID: userUID},
			mockErr:        auth.ErrUserNotFound,
			wantMockCall:   true,
			wantStatusCode: http.StatusNotFound,
			wantStatus:     "Error",
			wantError:      "user not found",
		},
		{
			name:           "already verified",
			requestBody:    Request{UserID: userUID},
			mockErr:        auth.ErrAlreadyVerified,
			wantMockCall:   true,
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "email is already verified",
		},
		{
			name:           "delivery failure",
			requestBody:    Request{UserID: userUID},
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
				serviceMock.On("ResendOTP", mock.Anything, userUID).Return(tt.mockErr).Once()
			}

			handler := New(newNoopLogger(), serviceMock)

			body, err := json.Marshal(tt.requestBody)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/resend-otp", bytes.NewReader(body))
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
				assert.Equal(t, "verification code sent", resp.Data["message"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
