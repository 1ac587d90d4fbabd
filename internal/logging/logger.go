// Package logging is the structured logging facade used by every component.
// SlogLogger is the production implementation; Nop discards output.
package logging

import "context"

// Logger writes leveled, structured records. Trailing args are key/value
// pairs:
//
//	log.Info(ctx, "account deleted", "username", name, "requester_id", id)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that adds args to every record.
	With(args ...any) Logger
}
