package models

import "time"

// Review рецензия пользователя на книгу с оценкой.
type Review struct {
	ID        int64     `json:"id"`
	BookID    int64     `json:"bookId"`
	UserUID   string    `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Цели комментирования.
const (
	CommentTargetBook    = "book"
	CommentTargetChapter = "chapter"
)

// Comment комментарий к книге или главе; ParentID указывает на
// родительский комментарий в треде (NULL для корневых).
type Comment struct {
	ID         int64     `json:"id"`
	TargetType string    `json:"targetType"`
	TargetID   int64     `json:"targetId"`
	UserUID    string    `json:"userId"`
	UserName   string    `json:"userName,omitempty"`
	UserAvatar *string   `json:"userAvatar,omitempty"`
	Content    string    `json:"content"`
	ParentID   *int64    `json:"parentId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
