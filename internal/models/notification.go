package models

import "time"

// Типы уведомлений, известные сервису.
const (
	NotificationChapterRelease = "chapter_release"
	NotificationNewComment     = "new_comment"
	NotificationNewFollower    = "new_follower"
)

// Notification in-app уведомление пользователя.
type Notification struct {
	ID        int64          `json:"id"`
	UserUID   string         `json:"userId"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Data      map[string]any `json:"data"`
	Read      bool           `json:"read"`
	ReadAt    *time.Time     `json:"readAt,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}
