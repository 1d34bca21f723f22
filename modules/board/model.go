package board

import (
	"time"

	"github.com/google/uuid"
)

// Post embeds its comments, so a post and its thread load in one read.
// AuthorID is nil when the author account no longer exists.
type Post struct {
	ID        uuid.UUID  `bson:"_id"`
	Title     string     `bson:"title"`
	Content   string     `bson:"content"`
	AuthorID  *uuid.UUID `bson:"author_id,omitempty"`
	Comments  []Comment  `bson:"comments"`
	CreatedAt time.Time  `bson:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

type Comment struct {
	ID        uuid.UUID  `bson:"_id"`
	Content   string     `bson:"content"`
	AuthorID  *uuid.UUID `bson:"author_id,omitempty"`
	CreatedAt time.Time  `bson:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

func (p *Post) comment(id uuid.UUID) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return &p.Comments[i]
		}
	}
	return nil
}

// Author is the public summary of a user shown next to content.
type Author struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  *string `json:"email,omitempty"`
	Avatar string  `json:"avatar,omitempty"`
}

type PostView struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Author    *Author       `json:"author"`
	Comments  []CommentView `json:"comments"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type CommentView struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Author    *Author   `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
