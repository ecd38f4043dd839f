package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AbdullaK123/writing-website-backend/internal/model"
)

// ChapterRepo persists chapters in the 'chapters' table.
type ChapterRepo struct{ DB *sql.DB }

func NewChapterRepo(db *sql.DB) *ChapterRepo { return &ChapterRepo{DB: db} }

// Create inserts a chapter and returns its ID.  Titles are unique within
// a story; a collision maps to ErrChapterTitleExists.
func (r *ChapterRepo) Create(ctx context.Context, storyID uint64, title, content string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO chapters (story_id, title, content) VALUES (?,?,?)",
		storyID, title, content)
	if err != nil {
		if isDuplicate(err, "uq_chapters_story_title") {
			return 0, ErrChapterTitleExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a chapter.  A missing chapter is (nil, nil).
func (r *ChapterRepo) GetByID(ctx context.Context, id uint64) (*model.Chapter, error) {
	var c model.Chapter
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,story_id,title,content,is_published,created_at,updated_at FROM chapters WHERE id=? LIMIT 1",
		id).Scan(&c.ID, &c.StoryID, &c.Title, &c.Content, &c.IsPublished, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByStory returns a story's chapters in creation order.
func (r *ChapterRepo) ListByStory(ctx context.Context, storyID uint64) ([]model.Chapter, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,story_id,title,content,is_published,created_at,updated_at FROM chapters WHERE story_id=? ORDER BY created_at, id",
		storyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Chapter
	for rows.Next() {
		var c model.Chapter
		if err := rows.Scan(&c.ID, &c.StoryID, &c.Title, &c.Content, &c.IsPublished, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update replaces a chapter's title, content and publication flag.
func (r *ChapterRepo) Update(ctx context.Context, id uint64, title, content string, isPublished bool) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE chapters SET title=?, content=?, is_published=?, updated_at=NOW() WHERE id=?",
		title, content, isPublished, id)
	if err != nil && isDuplicate(err, "uq_chapters_story_title") {
		return ErrChapterTitleExists
	}
	return err
}

// Delete removes a chapter.
func (r *ChapterRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM chapters WHERE id=?", id)
	return err
}
