package application

import "errors"

var (
	// ErrFeeTierNotAllowed ...
	ErrFeeTierNotAllowed = errors.New("fee tier not allowed")
	// ErrMissingTreasury ...
	ErrMissingTreasury = errors.New("missing treasury account")
	// ErrMissingRepository ...
	ErrMissingRepository = errors.New("missing repository")
	// ErrMissingGateway ...
	ErrMissingGateway = errors.New("missing asset transfer gateway")
	// ErrStateNotPersisted is returned along with the result of an operation
	// that has been executed, but whose resulting pool state could not be
	// stored. The next successful operation on the pool stores it.
	ErrStateNotPersisted = errors.New("operation executed but pool state not persisted")
)
