package book

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/novashelf/novashelf/internal/models"
	"github.com/novashelf/novashelf/internal/storage/repository"
)

// Мок хранилища книг
type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) CreateBook(ctx context.Context, book models.Book) (int64, error) {
	args := m.Called(ctx, book)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) ListBooks(ctx context.Context, search, genre string) ([]*models.Book, error) {
	args := m.Called(ctx, search, genre)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Book), args.Error(1)
}

func (m *RepoMock) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *RepoMock) UpdateBook(ctx context.Context, book *models.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *RepoMock) DeleteBook(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *RepoMock) ListChaptersByBook(ctx context.Context, bookID int64) ([]*models.Chapter, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Chapter), args.Error(1)
}

// Мок кэша каталога
type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	if args.Bool(0) {
		*(result.(*[]*models.Book)) = args.Get(2).([]*models.Book)
	}
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *CacheMock) Invalidate(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func newService(repo *RepoMock, cache *CacheMock) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return New(repo, cache, logger)
}

func TestService_List_CacheHit(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)

	cached := []*models.Book{{ID: 1, Title: "Cached Tale"}}
	cache.On("Get", mock.Anything, "books:catalog", mock.Anything).Return(true, nil, cached).Once()

	svc := newService(repo, cache)
	got, err := svc.List(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, cached, got)

	repo.AssertNotCalled(t, "ListBooks", mock.Anything, mock.Anything, mock.Anything)
	cache.AssertExpectations(t)
}

func TestService_List_CacheMissFillsCache(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)

	books := []*models.Book{{ID: 1, Title: "Fresh Tale"}}
	cache.On("Get", mock.Anything, "books:catalog", mock.Anything).Return(false, nil, nil).Once()
	repo.On("ListBooks", mock.Anything, "", "").Return(books, nil).Once()
	cache.On("Set", mock.Anything, "books:catalog", books, 5*time.Minute).Return(nil).Once()

	svc := newService(repo, cache)
	got, err := svc.List(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, books, got)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestService_List_FilteredBypassesCache(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)

	books := []*models.Book{{ID: 2, Title: "Fantasy Tale"}}
	repo.On("ListBooks", mock.Anything, "", "fantasy").Return(books, nil).Once()

	svc := newService(repo, cache)
	got, err := svc.List(context.Background(), "", "fantasy")
	require.NoError(t, err)
	assert.Equal(t, books, got)

	cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Update(t *testing.T) {
	existing := func() *models.Book {
		return &models.Book{
			ID:       1,
			OwnerUID: "owner-uid",
			Title:    "Old Title",
			Author:   "A. Writer",
			Genres:   []string{"fantasy"},
		}
	}

	tests := []struct {
		name    string
		userUID string
		getErr  error
		wantErr error
	}{
		{
			name:    "owner can update",
			userUID: "owner-uid",
		},
		{
			name:    "stranger is rejected",
			userUID: "other-uid",
			wantErr: ErrNotOwner,
		},
		{
			name:    "missing book",
			userUID: "owner-uid",
			getErr:  repository.ErrNotFound,
			wantErr: ErrBookNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)

			if tt.getErr != nil {
				repo.On("GetBook", mock.Anything, int64(1)).Return(nil, tt.getErr).Once()
			} else {
				repo.On("GetBook", mock.Anything, int64(1)).Return(existing(), nil).Once()
			}
			if tt.wantErr == nil {
				repo.On("UpdateBook", mock.Anything, mock.MatchedBy(func(b *models.Book) bool {
					return b.Title == "New Title" && b.Author == "A. Writer"
				})).Return(nil).Once()
				cache.On("Invalidate", mock.Anything, "books:catalog").Return(nil).Once()
			}

			svc := newService(repo, cache)
			got, err := svc.Update(context.Background(), tt.userUID, 1, UpdateBookInput{Title: "New Title"})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				repo.AssertNotCalled(t, "UpdateBook", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "New Title", got.Title)
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestService_Delete_InvalidatesCache(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)

	repo.On("GetBook", mock.Anything, int64(1)).
		Return(&models.Book{ID: 1, OwnerUID: "owner-uid"}, nil).Once()
	repo.On("DeleteBook", mock.Anything, int64(1)).Return(nil).Once()
	cache.On("Invalidate", mock.Anything, "books:catalog").Return(nil).Once()

	svc := newService(repo, cache)
	require.NoError(t, svc.Delete(context.Background(), "owner-uid", 1))

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestService_Delete_CacheFailureIsNotFatal(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)

	repo.On("GetBook", mock.Anything, int64(1)).
		Return(&models.Book{ID: 1, OwnerUID: "owner-uid"}, nil).Once()
	repo.On("DeleteBook", mock.Anything, int64(1)).Return(nil).Once()
	cache.On("Invalidate", mock.Anything, "books:catalog").
		Return(errors.New("redis down")).Once()

	svc := newService(repo, cache)
	assert.NoError(t, svc.Delete(context.Background(), "owner-uid", 1))
}
