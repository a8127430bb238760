package interfaces

import "github.com/m-mizutani/goerr/v2"

// Errors returned by repository implementations
var (
	ErrNotFound      = goerr.New("not found")
	ErrAlreadyExists = goerr.New("already exists")
)
