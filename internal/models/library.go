package models

import "time"

// LibraryEntry запись личной библиотеки: книга плюс прогресс чтения.
type LibraryEntry struct {
	ID               int64      `json:"id"`
	UserUID          string     `json:"userId"`
	BookID           int64      `json:"bookId"`
	CurrentChapterID *int64     `json:"currentChapterId,omitempty"`
	ProgressPercent  float64    `json:"progressPercent"`
	LastReadAt       *time.Time `json:"lastReadAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	Book             *Book      `json:"book,omitempty"`
}
