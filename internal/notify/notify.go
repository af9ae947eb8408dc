// Package notify delivers reminder messages to chat platforms. Each
// notifier is send-only: connection handling beyond a single request and
// inbound message routing are not this system's concern.
package notify

import "context"

// Notifier delivers one text message to a platform.
type Notifier interface {
	// Name identifies the platform, e.g. "telegram".
	Name() string

	// Send delivers the message. Implementations return an error rather
	// than retrying; callers treat delivery as best-effort.
	Send(ctx context.Context, text string) error
}
