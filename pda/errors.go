package pda

import "errors"

// ErrInvalidSeed indicates a malformed derivation input (zero identifier).
var ErrInvalidSeed = errors.New("pda: invalid derivation seed")
