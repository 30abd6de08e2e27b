package fuzzy

import "errors"

// Configuration errors are returned while building shapes, variables and
// engines. Per-call errors come from Fuzzify and Infer.
var (
	ErrInvalidShape    = errors.New("fuzzy: invalid membership shape")
	ErrInvalidUniverse = errors.New("fuzzy: invalid universe of discourse")
	ErrDuplicateTerm   = errors.New("fuzzy: duplicate term")
	ErrUnknownTerm     = errors.New("fuzzy: unknown term")
	ErrUnknownVariable = errors.New("fuzzy: unknown variable")
	ErrInvalidRule     = errors.New("fuzzy: invalid rule")
	ErrInvalidInput    = errors.New("fuzzy: invalid input")
	ErrSealed          = errors.New("fuzzy: variable is sealed")
)
