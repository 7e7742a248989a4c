// Package ctxkeys holds the shared context keys for the API layer.
// Extracted to a leaf package to avoid import cycles between api and
// api/handlers.
package ctxkeys

import "context"

// Key is the unexported named type for all API context keys. A named type
// means context.Value lookups cannot collide with plain string keys from
// other packages.
type Key string

// DeviceID is the context key for the authenticated kiosk device.
// Injected by AuthMiddleware from JWT claims, read by the protected handlers.
const DeviceID Key = "device_id"

// WithValue adds a ctxkeys.Key value to the context.
func WithValue(ctx context.Context, key Key, value string) context.Context {
	return context.WithValue(ctx, key, value)
}
