package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for the use case layer. The HTTP surface collapses all
// of these into one generic message; tests assert on the specific cause.
var (
	ErrPersistenceFailed = goerr.New("failed to persist prediction")
	ErrHistoryFailed     = goerr.New("failed to fetch histories")
)
