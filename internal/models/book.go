package models

import "time"

// Book книга (серийное произведение), принадлежащая автору.
type Book struct {
	ID            int64     `json:"id"`
	OwnerUID      string    `json:"userId"`
	Title         string    `json:"title"`
	Author        string    `json:"author,omitempty"`
	Description   string    `json:"description,omitempty"`
	Genres        []string  `json:"genres"`
	CoverImage    *string   `json:"coverImage,omitempty"`
	ChaptersCount int       `json:"chaptersCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Chapter глава книги. Order определяет позицию главы при чтении.
type Chapter struct {
	ID        int64     `json:"id"`
	BookID    int64     `json:"bookId"`
	OwnerUID  string    `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookWithChapters книга вместе с главами, отсортированными по порядку.
type BookWithChapters struct {
	Book
	Chapters []Chapter `json:"chapters"`
}

// ChapterReleaseEvent событие публикации новой главы,
// уходит в очередь для рассылки уведомлений подписчикам.
type ChapterReleaseEvent struct {
	BookID       int64  `json:"book_id"`
	BookTitle    string `json:"book_title"`
	ChapterID    int64  `json:"chapter_id"`
	ChapterTitle string `json:"chapter_title"`
	AuthorUID    string `json:"author_uid"`
}
