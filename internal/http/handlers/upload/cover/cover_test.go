package cover

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novashelf/novashelf/internal/http/middlewarectx"
	"github.com/novashelf/novashelf/internal/http/response"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestCoverHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		field          string
		filename       string
		authenticated  bool
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "successful upload",
			field:          "cover",
			filename:       "cover.png",
			authenticated:  true,
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "unauthenticated request",
			field:          "cover",
			filename:       "cover.png",
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized",
		},
		{
			name:           "wrong form field",
			field:          "attachment",
			filename:       "cover.png",
			authenticated:  true,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "cover file is required",
		},
		{
			name:           "unsupported file type",
			field:          "cover",
			filename:       "cover.exe",
			authenticated:  true,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "unsupported file type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uploadsDir := t.TempDir()
			handler := New(newNoopLogger(), uploadsDir)

			body, contentType := multipartBody(t, tt.field, tt.filename, []byte("fake image bytes"))
			req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/cover", body)
			req.Header.Set("Content-Type", contentType)
			if tt.authenticated {
				ctx := context.WithValue(req.Context(), middlewarectx.UserUID, "9b9e7a52-64a7-4e36-9e2c-2a1f42d0a111")
				req = req.WithContext(ctx)
			}

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatusCode, rr.Code)

			if tt.wantError != "" {
				var resp response.ErrorResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantError, resp.Error)
				return
			}

			var resp struct {
				Status string `json:"status"`
				Data   struct {
					Filename string `json:"filename"`
					URL      string `json:"url"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, response.StatusOK, resp.Status)
			assert.Equal(t, ".png", filepath.Ext(resp.Data.Filename))
			assert.Equal(t, "/uploads/"+resp.Data.Filename, resp.Data.URL)

			// Файл действительно сохранен в каталоге загрузок
			saved, err := os.ReadFile(filepath.Join(uploadsDir, resp.Data.Filename))
			require.NoError(t, err)
			assert.Equal(t, []byte("fake image bytes"), saved)
		})
	}
}
