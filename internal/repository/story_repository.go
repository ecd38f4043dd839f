package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AbdullaK123/writing-website-backend/internal/model"
)

// StoryRow is a story joined with its author's username, the shape the
// listing and detail endpoints render.
type StoryRow struct {
	model.Story
	AuthorUsername string
}

// StoryRepo persists stories in the 'stories' table.
type StoryRepo struct{ DB *sql.DB }

func NewStoryRepo(db *sql.DB) *StoryRepo { return &StoryRepo{DB: db} }

// Create inserts a story and returns its ID.  Story names are globally
// unique; a collision maps to ErrStoryNameExists.
func (r *StoryRepo) Create(ctx context.Context, userID uint64, name, blurb string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO stories (user_id, name, blurb) VALUES (?,?,?)",
		userID, name, blurb)
	if err != nil {
		if isDuplicate(err, "uq_stories_name") {
			return 0, ErrStoryNameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a story with its author.  A missing story is (nil, nil).
func (r *StoryRepo) GetByID(ctx context.Context, id uint64) (*StoryRow, error) {
	var s StoryRow
	err := r.DB.QueryRowContext(ctx,
		`SELECT s.id, s.user_id, s.name, s.blurb, s.created_at, s.updated_at, u.username
		   FROM stories s JOIN users u ON u.id = s.user_id
		  WHERE s.id=? LIMIT 1`, id).
		Scan(&s.ID, &s.UserID, &s.Name, &s.Blurb, &s.CreatedAt, &s.UpdatedAt, &s.AuthorUsername)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns one page of stories (newest last, stable by id) along with
// the total number of stories for page-count math.
func (r *StoryRepo) List(ctx context.Context, page, pageSize int) ([]StoryRow, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM stories").Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT s.id, s.user_id, s.name, s.blurb, s.created_at, s.updated_at, u.username
		   FROM stories s JOIN users u ON u.id = s.user_id
		  ORDER BY s.id
		  LIMIT ? OFFSET ?`, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []StoryRow
	for rows.Next() {
		var s StoryRow
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Blurb, &s.CreatedAt, &s.UpdatedAt, &s.AuthorUsername); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// Delete removes a story.  Ownership is checked by the handler before
// this is called.
func (r *StoryRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM stories WHERE id=?", id)
	return err
}
