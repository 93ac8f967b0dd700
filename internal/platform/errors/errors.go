package apperrors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrNoActiveSession     = errors.New("no active session")
	ErrActiveSessionExists = errors.New("active session already exists")
	ErrStorage             = errors.New("storage failure")
)

// Kind is the coarse error class reported to callers of the dispatcher.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindStorage    Kind = "storage"
	KindInternal   Kind = "internal"
)

// KindOf classifies err against the sentinels above. Storage wins over the
// others because a failed snapshot must never look like a user mistake.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrStorage):
		return KindStorage
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrNoActiveSession),
		errors.Is(err, ErrActiveSessionExists):
		return KindValidation
	default:
		return KindInternal
	}
}
