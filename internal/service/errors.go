package service

import "errors"

// Error taxonomy surfaced to the API boundary. Handlers match these with
// errors.Is and map them to status codes; anything else is an unexpected
// store/infrastructure failure and becomes a 500.
var (
	ErrValidation = errors.New("invalid input")

	ErrBookNotFound   = errors.New("book not found")
	ErrReviewNotFound = errors.New("review not found")

	ErrNotBookOwner    = errors.New("not authorized to modify this book")
	ErrNotReviewAuthor = errors.New("not authorized to modify this review")

	ErrDuplicateReview = errors.New("you have already reviewed this book")

	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
