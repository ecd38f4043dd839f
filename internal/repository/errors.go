// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as the
// auth service and the handlers to distinguish between failure scenarios
// without parsing driver error strings themselves.  Uniqueness violations
// are classified per index so that a lost race between two concurrent
// registrations still reports which field collided.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrUsernameExists is returned when an insert hits the unique index on
// users.username.
var ErrUsernameExists = errors.New("username already exists")

// ErrEmailExists is returned when an insert hits the unique index on
// users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrStoryNameExists is returned when a story insert hits the unique
// index on stories.name.
var ErrStoryNameExists = errors.New("story name already exists")

// ErrChapterTitleExists is returned when a chapter insert or update hits
// the per-story unique index on (story_id, title).
var ErrChapterTitleExists = errors.New("chapter title already exists in story")

// isDuplicate reports whether err is a MySQL duplicate-entry error (1062)
// for the named unique index.  The index name appears in the error
// message, e.g. `Duplicate entry 'alice' for key 'users.uq_users_username'`.
func isDuplicate(err error, index string) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != 1062 {
		return false
	}
	return strings.Contains(me.Message, index)
}
