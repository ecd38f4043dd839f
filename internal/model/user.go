package model

import "time"

// User represents an application user record as stored in the `users`
// table.  Usernames and emails are both unique; the database enforces
// this with the `uq_users_username` and `uq_users_email` indexes so
// concurrent registrations cannot slip past the duplicate checks.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Username     – unique display name (5–100 characters).
//	Email        – unique email address, the canonical login identifier.
//	PasswordHash – bcrypt hashed password; never the plaintext.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// SessionClaims is the fixed-shape record stored in Redis for a live
// session.  It carries just enough identity to answer "who is calling"
// without a database round trip.
type SessionClaims struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
