// Package cover реализует HTTP-обработчик загрузки обложек.
//
// Файл принимается multipart-формой, сохраняется под случайным именем
// в каталог загрузок и отдается статикой на /uploads/*. Книга ссылается
// на обложку по возвращенному имени файла.
package cover

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/novashelf/novashelf/internal/http/middlewarectx"
	"github.com/novashelf/novashelf/internal/http/response"
	"github.com/novashelf/novashelf/internal/lib/sl"
)

// maxUploadSize предельный размер обложки.
const maxUploadSize = 5 << 20

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// Handler обрабатывает HTTP-запросы загрузки обложек.
type Handler struct {
	log        *slog.Logger
	uploadsDir string
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, uploadsDir string) *Handler {
	return &Handler{
		log:        log,
		uploadsDir: uploadsDir,
	}
}

// ServeHTTP godoc
// @Summary Загрузка обложки
// @Description Принимает файл изображения в поле cover и возвращает имя сохраненного файла.
// @Tags Uploads
// @Security BearerAuth
// @Accept  multipart/form-data
// @Produce  json
// @Param cover formData file true "Файл обложки (jpg, png, gif, webp)"
// @Success 201 {object} response.Response "Имя файла и URL"
// @Failure 400 {object} response.ErrorResponse "Файл отсутствует или неподдерживаемый формат"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 500 {object} response.ErrorResponse "Не удалось сохранить файл"
// @Router /uploads/cover [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.upload.cover"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("unauthorized request")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("cover")
	if err != nil {
		log.Error("cover file missing", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("cover file is required"))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		log.Info("unsupported cover extension", slog.String("ext", ext))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unsupported file type"))
		return
	}

	if err := os.MkdirAll(h.uploadsDir, 0o755); err != nil {
		log.Error("failed to create uploads dir", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to save file"))
		return
	}

	filename := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(h.uploadsDir, filename))
	if err != nil {
		log.Error("failed to create file", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to save file"))
		return
	}
	defer func() {
		_ = dst.Close()
	}()

	if _, err := io.Copy(dst, file); err != nil {
		log.Error("failed to write file", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to save file"))
		return
	}

	log.Info("cover uploaded", slog.String("filename", filename))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"filename": filename,
		"url":      "/uploads/" + filename,
	}))
}
