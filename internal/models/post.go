package models

import "time"

// Post represents a text post. Author name and email are a snapshot taken at
// creation time; they do not track later renames of the user record.
type Post struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title       string    `json:"title" gorm:"type:varchar(200)" validate:"required,max=200"`
	Content     string    `json:"content" gorm:"type:text" validate:"required"`
	AuthorID    string    `json:"author_id" gorm:"type:varchar(36);index"`
	AuthorName  string    `json:"author_name" gorm:"type:varchar(100)"`
	AuthorEmail string    `json:"author_email" gorm:"type:varchar(255)"`
	ViewCount   int       `json:"view_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PostSummary is the list/search shape: everything but the content body.
type PostSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email"`
	ViewCount   int       `json:"view_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Summary returns the list representation of the post.
func (p *Post) Summary() PostSummary {
	return PostSummary{
		ID:          p.ID,
		Title:       p.Title,
		AuthorName:  p.AuthorName,
		AuthorEmail: p.AuthorEmail,
		ViewCount:   p.ViewCount,
		CreatedAt:   p.CreatedAt,
	}
}
