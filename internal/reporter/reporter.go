// Package reporter notifies the operator about submitted applications and
// run results.
package reporter

import "context"

// Reporter receives run events. Implementations must not block for long;
// callers log and ignore their errors.
type Reporter interface {
	Applied(ctx context.Context, url, company string) error
	Status(ctx context.Context, message string) error
	Error(ctx context.Context, err error) error
}

type nop struct{}

// Nop discards every event.
func Nop() Reporter { return nop{} }

func (nop) Applied(context.Context, string, string) error { return nil }
func (nop) Status(context.Context, string) error          { return nil }
func (nop) Error(context.Context, error) error            { return nil }
