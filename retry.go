package stuffer

import (
	"errors"

	"golang.org/x/sys/unix"
)

// interrupted is the only condition that is retried internally.
func interrupted(err error) bool {
	return errors.Is(err, unix.EINTR)
}

// retryIf calls fn until it succeeds or fails with an error rejected by retryable.
// onRetry, if not nil, is notified about every swallowed error.
func retryIf[T any](retryable func(error) bool, onRetry func(error), fn func() (T, error)) (T, error) {
	for {
		rst, err := fn()
		if err == nil || !retryable(err) {
			return rst, err
		}
		if onRetry != nil {
			onRetry(err)
		}
	}
}
