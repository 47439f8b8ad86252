package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/novashelf/novashelf/internal/migrations"
	"github.com/novashelf/novashelf/internal/models"
)

func setupTestDb(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort(nat.Port("5432/tcp")),
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2),
			).WithDeadline(3*time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for i := 0; i < 10; i++ {
		storage, err = New(dsn)
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath), "failed to run migrations")

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			storage.DB.Close()
		}
		if pgContainer != nil {
			_ = pgContainer.Terminate(ctx)
		}
	}

	return storage, cleanup
}

func createTestUser(t *testing.T, s *Storage, email string) string {
	t.Helper()

	code := "123456"
	expires := time.Now().Add(10 * time.Minute)
	uid, err := s.CreateUser(context.Background(), models.User{
		Name:         "Reader",
		Email:        email,
		PasswordHash: "hashedpassword",
		Role:         "reader",
		OTP:          &code,
		OTPExpires:   &expires,
	})
	require.NoError(t, err)
	require.NotEmpty(t, uid)
	return uid
}

func TestStorage_UserLifecycle(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()

	uid := createTestUser(t, storage, "reader@example.com")

	// Дубликат почты нарушает уникальность
	_, err := storage.CreateUser(ctx, models.User{
		Name:         "Another",
		Email:        "reader@example.com",
		PasswordHash: "hashedpassword",
		Role:         "reader",
	})
	require.Error(t, err)

	got, err := storage.GetUserByEmail(ctx, "reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, uid, got.UID)
	assert.Equal(t, "Reader", got.Name)
	assert.Equal(t, "reader", got.Role)
	assert.False(t, got.IsEmailVerified)
	require.NotNil(t, got.OTP)
	assert.Equal(t, "123456", *got.OTP)
	require.NotNil(t, got.OTPExpires)

	_, err = storage.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	// Перевыпуск кода перезаписывает прежний
	newExpires := time.Now().Add(10 * time.Minute)
	require.NoError(t, storage.UpdateOTP(ctx, uid, "654321", newExpires))

	got, err = storage.GetUserByID(ctx, uid)
	require.NoError(t, err)
	require.NotNil(t, got.OTP)
	assert.Equal(t, "654321", *got.OTP)

	err = storage.UpdateOTP(ctx, "00000000-0000-0000-0000-000000000000", "111111", newExpires)
	assert.ErrorIs(t, err, ErrNotFound)

	// Подтверждение сбрасывает код
	require.NoError(t, storage.MarkEmailVerified(ctx, uid))

	got, err = storage.GetUserByID(ctx, uid)
	require.NoError(t, err)
	assert.True(t, got.IsEmailVerified)
	assert.Nil(t, got.OTP)
	assert.Nil(t, got.OTPExpires)

	// Компенсирующее удаление
	require.NoError(t, storage.DeleteUser(ctx, uid))
	_, err = storage.GetUserByID(ctx, uid)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_BooksAndLibrary(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()

	author := createTestUser(t, storage, "author@example.com")
	reader := createTestUser(t, storage, "reader@example.com")

	bookID, err := storage.CreateBook(ctx, models.Book{
		OwnerUID:    author,
		Title:       "Serialized Tale",
		Author:      "A. Writer",
		Description: "ongoing story",
		Genres:      []string{"fantasy"},
	})
	require.NoError(t, err)
	require.NotZero(t, bookID)

	book, err := storage.GetBook(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, "Serialized Tale", book.Title)
	assert.Equal(t, []string{"fantasy"}, book.Genres)
	assert.Equal(t, 0, book.ChaptersCount)

	_, err = storage.GetBook(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, storage.AddChaptersCount(ctx, bookID, 1))
	book, err = storage.GetBook(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 1, book.ChaptersCount)

	// Библиотека
	entryID, err := storage.AddLibraryEntry(ctx, reader, bookID)
	require.NoError(t, err)
	require.NotZero(t, entryID)

	// Повторное добавление нарушает уникальность пары (user, book)
	_, err = storage.AddLibraryEntry(ctx, reader, bookID)
	require.Error(t, err)

	progress := 42.5
	entry, err := storage.UpsertProgress(ctx, reader, bookID, nil, &progress)
	require.NoError(t, err)
	assert.InDelta(t, 42.5, entry.ProgressPercent, 0.001)
	require.NotNil(t, entry.LastReadAt)

	entries, err := storage.ListLibrary(ctx, reader)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Book)
	assert.Equal(t, "Serialized Tale", entries[0].Book.Title)

	holders, err := storage.ListLibraryHolderUIDs(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, []string{reader}, holders)

	require.NoError(t, storage.RemoveLibraryEntry(ctx, reader, bookID))
	_, err = storage.GetLibraryEntry(ctx, reader, bookID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_Follows(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()

	author := createTestUser(t, storage, "author@example.com")
	reader := createTestUser(t, storage, "reader@example.com")

	require.NoError(t, storage.Follow(ctx, reader, author))
	// Повторная подписка безвредна
	require.NoError(t, storage.Follow(ctx, reader, author))

	followers, err := storage.ListFollowers(ctx, author)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, reader, followers[0].UID)

	following, err := storage.ListFollowing(ctx, reader)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, author, following[0].UID)

	uids, err := storage.ListFollowerUIDs(ctx, author)
	require.NoError(t, err)
	assert.Equal(t, []string{reader}, uids)

	n, err := storage.CountFollowers(ctx, author)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, storage.Unfollow(ctx, reader, author))
	require.NoError(t, storage.Unfollow(ctx, reader, author))

	n, err = storage.CountFollowers(ctx, author)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStorage_Comments(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()

	author := createTestUser(t, storage, "author@example.com")
	reader := createTestUser(t, storage, "reader@example.com")

	bookID, err := storage.CreateBook(ctx, models.Book{
		OwnerUID: author, Title: "Serialized Tale", Genres: []string{},
	})
	require.NoError(t, err)

	commentID, err := storage.CreateComment(ctx, models.Comment{
		TargetType: models.CommentTargetBook,
		TargetID:   bookID,
		UserUID:    reader,
		Content:    "great chapter",
	})
	require.NoError(t, err)

	// Одиночная выборка несет имя автора, как и списочная
	got, err := storage.GetComment(ctx, commentID)
	require.NoError(t, err)
	assert.Equal(t, reader, got.UserUID)
	assert.Equal(t, "Reader", got.UserName)
	assert.Equal(t, "great chapter", got.Content)

	list, err := storage.ListComments(ctx, models.CommentTargetBook, bookID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Reader", list[0].UserName)

	require.NoError(t, storage.DeleteComment(ctx, commentID))
	_, err = storage.GetComment(ctx, commentID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_CheckDatabaseReady(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	assert.NoError(t, storage.CheckDatabaseReady(context.Background()))
}
