package core

import "time"

// Identity is the authenticated principal behind a connection.
type Identity struct {
	ID   int64
	Name string
}

// IsZero reports whether the identity was never resolved.
func (i Identity) IsZero() bool {
	return i.ID == 0
}

// IdentityResolver turns a handshake credential into an Identity.
// Failures wrap ErrUnauthenticated.
type IdentityResolver interface {
	Verify(credential string) (Identity, error)
}

// Attachment references a stored file. Resolving the path is up to the upload layer.
type Attachment struct {
	Path string
	Name string
}

// Message is the canonical, committed chat message.
// ID and CreatedAt are assigned by the PersistenceGateway and never changed afterwards.
type Message struct {
	ID         int64
	ChannelID  int64
	Author     Identity
	Content    string
	Attachment *Attachment
	CreatedAt  time.Time
}

// Commit is what the gateway returns for a durably appended message.
type Commit struct {
	ID        int64
	CreatedAt time.Time
}
