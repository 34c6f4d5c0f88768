package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint is violated.
	ErrConflict = errors.New("conflict")
)

// User represents a user in the system.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Channel represents a chat channel.
type Channel struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Message represents a persisted chat message.
// Username is filled by history queries only.
type Message struct {
	ID             int64
	ChannelID      int64
	UserID         int64
	Username       string
	Content        string
	AttachmentPath *string
	AttachmentName *string
	CreatedAt      time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// ChannelStore handles channel persistence.
type ChannelStore interface {
	// CreateChannel creates a new channel.
	CreateChannel(ctx context.Context, name string) (*Channel, error)

	// EnsureChannels creates any of the named channels that do not exist yet.
	EnsureChannels(ctx context.Context, names []string) error

	// GetChannelByID retrieves a channel by ID.
	GetChannelByID(ctx context.Context, id int64) (*Channel, error)

	// ListChannels lists all channels ordered by name.
	ListChannels(ctx context.Context) ([]*Channel, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// AppendMessage durably stores msg and sets its ID and CreatedAt.
	AppendMessage(ctx context.Context, msg *Message) error

	// ListMessages returns the latest limit messages of a channel, oldest first.
	ListMessages(ctx context.Context, channelID int64, limit int) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	ChannelStore
	MessageStore

	// Migrate applies the schema. It is idempotent.
	Migrate(ctx context.Context) error

	// Close closes the underlying database connection.
	Close() error
}
