package notification

import "errors"

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidType          = errors.New("invalid notification type")
	ErrEmptyTitle           = errors.New("notification title is required")
	ErrNoRecipients         = errors.New("at least one recipient is required")
)
