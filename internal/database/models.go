package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the bun model for the users table.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email        string    `bun:"email,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:now()"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:now()"`
}

// Session is the bun model for the sessions table. Tokens are stored hashed;
// the plaintext token only ever travels to the client.
type Session struct {
	bun.BaseModel `bun:"table:sessions"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	TokenHash string    `bun:"token_hash,notnull,unique"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:uuid"`
	Email     string    `bun:"email,notnull"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:now()"`
}

// Program is the bun model for the programs table.
type Program struct {
	bun.BaseModel `bun:"table:programs"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Title       string    `bun:"title,notnull"`
	Code        string    `bun:"code,notnull"`
	Description *string   `bun:"description"`
	Visibility  string    `bun:"visibility,notnull,default:'private'"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:now()"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:now()"`
}
