package connection

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("connection not found")

// Connection holds one user's credentials for one provider. The sync core
// treats it as read-only except for LastSyncedAt.
type Connection struct {
	ID          uuid.UUID
	Provider    string
	AccountName string

	// Credential bundle; which fields are populated depends on the provider's
	// authentication scheme.
	APIKey       string
	ClientID     string
	ClientSecret string
	AccessToken  string
	PrivateKey   string // PEM-encoded RSA key for step-up challenges
	Environment  string
	ProfileID    string

	LastSyncedAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
