package wrap

import (
	"context"
	"errors"
)

// Error attaches the LogCtx of ctx to err. An error that already carries a LogCtx
// keeps the one from the place it was first wrapped.
func Error(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	var e *errorWithLogCtx
	if errors.As(err, &e) {
		return err
	}

	return &errorWithLogCtx{
		err:    err,
		logCtx: fromContext(ctx),
	}
}
