// Package directory defines the recipient lookup port: customer identity in,
// device push token out.
package directory

import "context"

// RecipientDirectory resolves a customer identity (email or upstream user
// id) to a device push token. An empty token with a nil error means "no
// device registered" — that is an expected condition, not a failure.
type RecipientDirectory interface {
	ResolveToken(ctx context.Context, identity string) (string, error)
}
