package notifier

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/novashelf/novashelf/internal/models"
)

// Мок хранилища получателей
type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) ListFollowerUIDs(ctx context.Context, userUID string) ([]string, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *RepoMock) ListLibraryHolderUIDs(ctx context.Context, bookID int64) ([]string, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// Запоминает получателей вместо создания уведомлений
type NotifierSpy struct {
	recipients []string
	notifType  string
	title      string
}

func (n *NotifierSpy) Notify(_ context.Context, userUID, notifType, title, _ string, _ map[string]any) {
	n.recipients = append(n.recipients, userUID)
	n.notifType = notifType
	n.title = title
}

func newService(repo *RepoMock, spy *NotifierSpy) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return New(repo, spy, logger)
}

func marshalEvent(t *testing.T, event models.ChapterReleaseEvent) []byte {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)
	return body
}

func TestService_HandleChapterRelease(t *testing.T) {
	event := models.ChapterReleaseEvent{
		BookID:       7,
		BookTitle:    "Serialized Tale",
		ChapterID:    42,
		ChapterTitle: "The Reveal",
		AuthorUID:    "author-uid",
	}

	repo := new(RepoMock)
	// Пересечение подписчиков и держателей, автор среди держателей
	repo.On("ListFollowerUIDs", mock.Anything, "author-uid").
		Return([]string{"alice", "bob"}, nil).Once()
	repo.On("ListLibraryHolderUIDs", mock.Anything, int64(7)).
		Return([]string{"bob", "carol", "author-uid"}, nil).Once()

	spy := &NotifierSpy{}
	svc := newService(repo, spy)

	err := svc.HandleChapterRelease(context.Background(), marshalEvent(t, event))
	require.NoError(t, err)

	sort.Strings(spy.recipients)
	assert.Equal(t, []string{"alice", "bob", "carol"}, spy.recipients,
		"each recipient is notified once, author excluded")
	assert.Equal(t, models.NotificationChapterRelease, spy.notifType)
	assert.Equal(t, "New chapter of Serialized Tale", spy.title)

	repo.AssertExpectations(t)
}

func TestService_HandleChapterRelease_BadPayload(t *testing.T) {
	repo := new(RepoMock)
	spy := &NotifierSpy{}
	svc := newService(repo, spy)

	err := svc.HandleChapterRelease(context.Background(), []byte("not a json"))
	require.Error(t, err)
	assert.Empty(t, spy.recipients)
	repo.AssertNotCalled(t, "ListFollowerUIDs", mock.Anything, mock.Anything)
}

func TestService_HandleChapterRelease_NoRecipients(t *testing.T) {
	event := models.ChapterReleaseEvent{
		BookID:    7,
		ChapterID: 42,
		AuthorUID: "author-uid",
	}

	repo := new(RepoMock)
	repo.On("ListFollowerUIDs", mock.Anything, "author-uid").Return([]string{}, nil).Once()
	repo.On("ListLibraryHolderUIDs", mock.Anything, int64(7)).Return([]string{}, nil).Once()

	spy := &NotifierSpy{}
	svc := newService(repo, spy)

	require.NoError(t, svc.HandleChapterRelease(context.Background(), marshalEvent(t, event)))
	assert.Empty(t, spy.recipients)
}
