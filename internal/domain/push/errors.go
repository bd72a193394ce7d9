package push

import "errors"

var (
	// ErrSubscriptionGone marks a terminal delivery failure; the subscription should be pruned.
	ErrSubscriptionGone = errors.New("push subscription is gone")

	ErrUnsupportedKind  = errors.New("unsupported push subscription kind")
	ErrInvalidPayload   = errors.New("invalid push subscription payload")
	ErrNotFound         = errors.New("push subscription not found")
	ErrSenderNotEnabled = errors.New("push transport not configured")
)
