// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Tokens collects issued access tokens.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// Person is a single tracked birthday record, owned by exactly one user.
type Person struct {
	ID            uuid.UUID // server-generated PK
	OwnerID       uuid.UUID // FK -> users.id; every read/write is scoped by it
	Name          string
	Nickname      string
	PhoneDigits   string // normalized 10-digit phone number
	BirthDate     string // YYYY-MM-DD; legacy rows may hold unparseable text
	Relationship  string
	Zodiac        string
	PhotoRef      string // opaque media store reference, "" when no photo
	Message       string // personalized greeting text
	FavoriteColor string
	Hobbies       string
	GiftIdeas     string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PersonPatch carries a partial update. Nil fields keep their prior value.
// PhotoRef is not patchable directly; it changes only when a new asset is
// uploaded through the saga.
type PersonPatch struct {
	Name          *string
	Nickname      *string
	PhoneDigits   *string
	BirthDate     *string
	Relationship  *string
	Zodiac        *string
	Message       *string
	FavoriteColor *string
	Hobbies       *string
	GiftIdeas     *string
	Notes         *string
}

// User represents an account. Passwords are stored as Argon2id hashes only.
type User struct {
	ID        uuid.UUID // PK
	Username  string    // unique
	PwdHash   []byte    // Argon2id(password, Salt)
	Salt      []byte    // per-user auth salt
	CreatedAt time.Time
}
