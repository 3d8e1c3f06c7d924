package port

import "context"

// Sender dispatches credential-reset notifications. Delivery is fire-and-forget
// relative to the credential change: a send failure is reported to the caller
// as a partial-success outcome, never as a rollback.
type Sender interface {
	SendPasswordReset(ctx context.Context, name, email, password string) error
}
