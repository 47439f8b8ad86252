// Package novashelf предоставляет маршруты для основного приложения.
package novashelf

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/novashelf/novashelf/internal/config"
	loginhandler "github.com/novashelf/novashelf/internal/http/handlers/auth/login"
	registerhandler "github.com/novashelf/novashelf/internal/http/handlers/auth/register"
	resendotphandler "github.com/novashelf/novashelf/internal/http/handlers/auth/resendotp"
	verifyotphandler "github.com/novashelf/novashelf/internal/http/handlers/auth/verifyotp"
	bookcreate "github.com/novashelf/novashelf/internal/http/handlers/book/create"
	booklist "github.com/novashelf/novashelf/internal/http/handlers/book/list"
	bookread "github.com/novashelf/novashelf/internal/http/handlers/book/read"
	bookremove "github.com/novashelf/novashelf/internal/http/handlers/book/remove"
	bookupdate "github.com/novashelf/novashelf/internal/http/handlers/book/update"
	chaptercreate "github.com/novashelf/novashelf/internal/http/handlers/chapter/create"
	chapterlist "github.com/novashelf/novashelf/internal/http/handlers/chapter/list"
	chapterremove "github.com/novashelf/novashelf/internal/http/handlers/chapter/remove"
	chapterupdate "github.com/novashelf/novashelf/internal/http/handlers/chapter/update"
	commentcreate "github.com/novashelf/novashelf/internal/http/handlers/comment/create"
	commentlist "github.com/novashelf/novashelf/internal/http/handlers/comment/list"
	commentremove "github.com/novashelf/novashelf/internal/http/handlers/comment/remove"
	healthhandler "github.com/novashelf/novashelf/internal/http/handlers/health"
	libraryadd "github.com/novashelf/novashelf/internal/http/handlers/library/add"
	librarylist "github.com/novashelf/novashelf/internal/http/handlers/library/list"
	libraryprogress "github.com/novashelf/novashelf/internal/http/handlers/library/progress"
	libraryremove "github.com/novashelf/novashelf/internal/http/handlers/library/remove"
	notificationlist "github.com/novashelf/novashelf/internal/http/handlers/notification/list"
	notificationmarkallread "github.com/novashelf/novashelf/internal/http/handlers/notification/markallread"
	notificationmarkread "github.com/novashelf/novashelf/internal/http/handlers/notification/markread"
	paymentordercreate "github.com/novashelf/novashelf/internal/http/handlers/payment/ordercreate"
	paymentpublickey "github.com/novashelf/novashelf/internal/http/handlers/payment/publickey"
	reviewcreate "github.com/novashelf/novashelf/internal/http/handlers/review/create"
	reviewlist "github.com/novashelf/novashelf/internal/http/handlers/review/list"
	reviewremove "github.com/novashelf/novashelf/internal/http/handlers/review/remove"
	reviewupdate "github.com/novashelf/novashelf/internal/http/handlers/review/update"
	uploadcover "github.com/novashelf/novashelf/internal/http/handlers/upload/cover"
	userdashboard "github.com/novashelf/novashelf/internal/http/handlers/user/dashboard"
	userfollow "github.com/novashelf/novashelf/internal/http/handlers/user/follow"
	userfollowers "github.com/novashelf/novashelf/internal/http/handlers/user/followers"
	userfollowing "github.com/novashelf/novashelf/internal/http/handlers/user/following"
	userprofile "github.com/novashelf/novashelf/internal/http/handlers/user/profile"
	userunfollow "github.com/novashelf/novashelf/internal/http/handlers/user/unfollow"
	userupdateprofile "github.com/novashelf/novashelf/internal/http/handlers/user/updateprofile"
	"github.com/novashelf/novashelf/internal/http/middlewarectx"
	"github.com/novashelf/novashelf/internal/lib/jwt"
	authservice "github.com/novashelf/novashelf/internal/services/auth"
	bookservice "github.com/novashelf/novashelf/internal/services/book"
	chapterservice "github.com/novashelf/novashelf/internal/services/chapter"
	commentservice "github.com/novashelf/novashelf/internal/services/comment"
	libraryservice "github.com/novashelf/novashelf/internal/services/library"
	notificationservice "github.com/novashelf/novashelf/internal/services/notification"
	paymentservice "github.com/novashelf/novashelf/internal/services/payment"
	reviewservice "github.com/novashelf/novashelf/internal/services/review"
	userservice "github.com/novashelf/novashelf/internal/services/user"
	"github.com/novashelf/novashelf/internal/storage/repository"
)

// Services зависимости HTTP-слоя.
type Services struct {
	Storage      *repository.Storage
	JWTMaker     jwt.Maker
	Auth         *authservice.Service
	Book         *bookservice.Service
	Chapter      *chapterservice.Service
	Review       *reviewservice.Service
	Comment      *commentservice.Service
	Library      *libraryservice.Service
	Notification *notificationservice.Service
	User         *userservice.Service
	Payment      *paymentservice.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.CORSMiddleware(cfg.FrontendURL),
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", registerhandler.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/verify-otp", verifyotphandler.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/resend-otp", resendotphandler.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/login", loginhandler.New(logger, s.Auth).ServeHTTP)

		r.Get("/books", booklist.New(logger, s.Book).ServeHTTP)
		r.Get("/books/{id}", bookread.New(logger, s.Book).ServeHTTP)
		r.Get("/books/{bookId}/chapters", chapterlist.New(logger, s.Chapter).ServeHTTP)
		r.Get("/books/{bookId}/reviews", reviewlist.New(logger, s.Review).ServeHTTP)
		r.Get("/comments/{targetType}/{targetId}", commentlist.New(logger, s.Comment).ServeHTTP)
		r.Get("/users/{uid}", userprofile.New(logger, s.User).ServeHTTP)
		r.Get("/users/{uid}/followers", userfollowers.New(logger, s.User).ServeHTTP)
		r.Get("/users/{uid}/following", userfollowing.New(logger, s.User).ServeHTTP)
		r.Get("/payments/key", paymentpublickey.New(logger, s.Payment).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.JWTMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/books", bookcreate.New(logger, s.Book).ServeHTTP)
			r.Put("/books/{id}", bookupdate.New(logger, s.Book).ServeHTTP)
			r.Delete("/books/{id}", bookremove.New(logger, s.Book).ServeHTTP)
			r.Post("/books/{bookId}/chapters", chaptercreate.New(logger, s.Chapter).ServeHTTP)
			r.Put("/chapters/{id}", chapterupdate.New(logger, s.Chapter).ServeHTTP)
			r.Delete("/chapters/{id}", chapterremove.New(logger, s.Chapter).ServeHTTP)

			r.Post("/books/{bookId}/reviews", reviewcreate.New(logger, s.Review).ServeHTTP)
			r.Put("/reviews/{id}", reviewupdate.New(logger, s.Review).ServeHTTP)
			r.Delete("/reviews/{id}", reviewremove.New(logger, s.Review).ServeHTTP)
			r.Post("/comments", commentcreate.New(logger, s.Comment).ServeHTTP)
			r.Delete("/comments/{id}", commentremove.New(logger, s.Comment).ServeHTTP)

			r.Get("/library", librarylist.New(logger, s.Library).ServeHTTP)
			r.Post("/library", libraryadd.New(logger, s.Library).ServeHTTP)
			r.Delete("/library/{bookId}", libraryremove.New(logger, s.Library).ServeHTTP)
			r.Put("/library/{bookId}/progress", libraryprogress.New(logger, s.Library).ServeHTTP)

			r.Get("/notifications", notificationlist.New(logger, s.Notification).ServeHTTP)
			r.Post("/notifications/read", notificationmarkread.New(logger, s.Notification).ServeHTTP)
			r.Post("/notifications/read-all", notificationmarkallread.New(logger, s.Notification).ServeHTTP)

			r.Put("/users/me", userupdateprofile.New(logger, s.User).ServeHTTP)
			r.Get("/users/me/dashboard", userdashboard.New(logger, s.User).ServeHTTP)
			r.Post("/users/{uid}/follow", userfollow.New(logger, s.User).ServeHTTP)
			r.Delete("/users/{uid}/follow", userunfollow.New(logger, s.User).ServeHTTP)

			r.Post("/uploads/cover", uploadcover.New(logger, cfg.UploadsDir).ServeHTTP)

			r.Post("/payments/orders", paymentordercreate.New(logger, s.Payment).ServeHTTP)
		})
	})

	r.Get("/health", healthhandler.New(logger, s.Storage).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
	// Отдача загруженных обложек и аватаров
	fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir)))
	r.Get("/uploads/*", fs.ServeHTTP)
}
