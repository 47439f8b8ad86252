package comment

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/novashelf/novashelf/internal/models"
	"github.com/novashelf/novashelf/internal/storage/repository"
)

// Мок хранилища комментариев
type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *RepoMock) GetChapter(ctx context.Context, id int64) (*models.Chapter, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chapter), args.Error(1)
}

func (m *RepoMock) GetUserByID(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) CreateComment(ctx context.Context, comment models.Comment) (int64, error) {
	args := m.Called(ctx, comment)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) ListComments(ctx context.Context, targetType string, targetID int64) ([]*models.Comment, error) {
	args := m.Called(ctx, targetType, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Comment), args.Error(1)
}

func (m *RepoMock) GetComment(ctx context.Context, id int64) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *RepoMock) DeleteComment(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Запоминает отправленные уведомления
type NotifierSpy struct {
	recipients []string
	bodies     []string
}

func (n *NotifierSpy) Notify(_ context.Context, userUID, _, _, body string, _ map[string]any) {
	n.recipients = append(n.recipients, userUID)
	n.bodies = append(n.bodies, body)
}

func newService(repo *RepoMock, spy *NotifierSpy) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return New(repo, spy, logger)
}

func TestService_Create_NotificationCarriesCommenterName(t *testing.T) {
	book := &models.Book{ID: 7, OwnerUID: "owner-uid", Title: "Serialized Tale"}
	saved := &models.Comment{
		ID:         1,
		TargetType: models.CommentTargetBook,
		TargetID:   7,
		UserUID:    "reader-uid",
		UserName:   "Reader Joe",
		Content:    "great chapter",
	}

	repo := new(RepoMock)
	repo.On("GetBook", mock.Anything, int64(7)).Return(book, nil).Once()
	repo.On("CreateComment", mock.Anything, mock.Anything).Return(int64(1), nil).Once()
	repo.On("GetComment", mock.Anything, int64(1)).Return(saved, nil).Once()

	spy := &NotifierSpy{}
	svc := newService(repo, spy)

	created, err := svc.Create(context.Background(), "reader-uid", models.CommentTargetBook, 7, "great chapter", nil)
	require.NoError(t, err)
	assert.Equal(t, "Reader Joe", created.UserName)

	require.Equal(t, []string{"owner-uid"}, spy.recipients)
	assert.Equal(t, "Reader Joe commented on your book", spy.bodies[0])

	repo.AssertExpectations(t)
}

func TestService_Create_ReplyNotifiesParentAuthorByName(t *testing.T) {
	book := &models.Book{ID: 7, OwnerUID: "owner-uid", Title: "Serialized Tale"}
	parentID := int64(1)
	parent := &models.Comment{
		ID: 1, TargetType: models.CommentTargetBook, TargetID: 7, UserUID: "parent-uid",
	}
	saved := &models.Comment{
		ID:         2,
		TargetType: models.CommentTargetBook,
		TargetID:   7,
		UserUID:    "reader-uid",
		UserName:   "Reader Joe",
		Content:    "I agree",
		ParentID:   &parentID,
	}

	repo := new(RepoMock)
	repo.On("GetBook", mock.Anything, int64(7)).Return(book, nil).Once()
	repo.On("GetComment", mock.Anything, int64(1)).Return(parent, nil).Once()
	repo.On("CreateComment", mock.Anything, mock.Anything).Return(int64(2), nil).Once()
	repo.On("GetComment", mock.Anything, int64(2)).Return(saved, nil).Once()

	spy := &NotifierSpy{}
	svc := newService(repo, spy)

	_, err := svc.Create(context.Background(), "reader-uid", models.CommentTargetBook, 7, "I agree", &parentID)
	require.NoError(t, err)

	require.Equal(t, []string{"owner-uid", "parent-uid"}, spy.recipients)
	assert.Equal(t, "Reader Joe replied to your comment on Serialized Tale", spy.bodies[1])
}

func TestService_Delete(t *testing.T) {
	saved := &models.Comment{
		ID: 1, TargetType: models.CommentTargetBook, TargetID: 7, UserUID: "author-uid",
	}

	tests := []struct {
		name       string
		callerUID  string
		caller     *models.User
		wantErr    error
		wantDelete bool
	}{
		{
			name:       "author deletes own comment",
			callerUID:  "author-uid",
			wantDelete: true,
		},
		{
			name:       "admin deletes someone else's comment",
			callerUID:  "admin-uid",
			caller:     &models.User{UID: "admin-uid", IsAdmin: true},
			wantDelete: true,
		},
		{
			name:      "stranger is rejected",
			callerUID: "stranger-uid",
			caller:    &models.User{UID: "stranger-uid"},
			wantErr:   ErrNotOwner,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("GetComment", mock.Anything, int64(1)).Return(saved, nil).Once()
			if tt.caller != nil {
				repo.On("GetUserByID", mock.Anything, tt.callerUID).Return(tt.caller, nil).Once()
			}
			if tt.wantDelete {
				repo.On("DeleteComment", mock.Anything, int64(1)).Return(nil).Once()
			}

			svc := newService(repo, &NotifierSpy{})
			err := svc.Delete(context.Background(), tt.callerUID, 1)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "DeleteComment", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Delete_MissingComment(t *testing.T) {
	repo := new(RepoMock)
	repo.On("GetComment", mock.Anything, int64(9)).Return(nil, repository.ErrNotFound).Once()

	svc := newService(repo, &NotifierSpy{})
	assert.ErrorIs(t, svc.Delete(context.Background(), "author-uid", 9), ErrCommentNotFound)
}
