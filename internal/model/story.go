package model

import "time"

// Story models a row in the `stories` table.  Story names are globally
// unique (`uq_stories_name`).  The blurb is a TEXT column holding the
// short description shown in listings.
type Story struct {
	ID        uint64    // stories.id
	UserID    uint64    // stories.user_id (author)
	Name      string    // stories.name
	Blurb     string    // stories.blurb
	CreatedAt time.Time // stories.created_at
	UpdatedAt time.Time // stories.updated_at
}

// Chapter models a row in the `chapters` table.  Titles are unique per
// story (`uq_chapters_story_title`).  Content is a TEXT column.
type Chapter struct {
	ID          uint64    // chapters.id
	StoryID     uint64    // chapters.story_id
	Title       string    // chapters.title
	Content     string    // chapters.content
	IsPublished bool      // chapters.is_published
	CreatedAt   time.Time // chapters.created_at
	UpdatedAt   time.Time // chapters.updated_at
}
