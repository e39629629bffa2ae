package port

import "context"

// KeyedLocker serializes work on a single key (a payment transaction id).
// The returned unlock func must be called on every exit path.
type KeyedLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
