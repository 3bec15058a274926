package secrets

import "context"

// Provider defines a generic secrets manager interface.
// Concrete implementations (AWS, in-memory fakes, etc.) can satisfy this.
type Provider interface {
	// GetSecret returns the current string value stored under name.
	GetSecret(ctx context.Context, name string) (string, error)

	// PutSecret stores value under name, creating the secret when it does not exist yet.
	PutSecret(ctx context.Context, name, value string) error
}
