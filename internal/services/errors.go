package services

import (
	"errors"
	"fmt"
	"math/big"
)

// Authorization failures. All are checked before any chain submission.
var (
	ErrCardNotSigned = errors.New("card has no valid signed delegation")
	ErrCardRevoked   = errors.New("card has been revoked")
	ErrCardExpired   = errors.New("card has expired")
	ErrStackInactive = errors.New("card stack is not active")
	ErrStackExpired  = errors.New("card stack has expired")
)

// ErrNoViableRoute is the expected outcome when no venue can fill a pair.
var ErrNoViableRoute = errors.New("no viable route for token pair")

// ConfigError is a configuration problem (unknown token, type or chain),
// surfaced verbatim before any signing or chain interaction.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

func configErrorf(format string, args ...interface{}) error {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// LimitExceededError carries the numbers a caller needs to render an
// actionable message. Scope names the exhausted envelope; empty means the
// rolling daily window.
type LimitExceededError struct {
	TokenAddress string
	Scope        string
	Limit        *big.Int
	Spent        *big.Int
	Requested    *big.Int
}

func (e *LimitExceededError) Error() string {
	if e.Scope != "" {
		return fmt.Sprintf("%s exceeded for %s: limit %s, spent %s, requested %s",
			e.Scope, e.TokenAddress, e.Limit, e.Spent, e.Requested)
	}
	return fmt.Sprintf("daily spending limit exceeded for %s: limit %s, spent today %s, requested %s",
		e.TokenAddress, e.Limit, e.Spent, e.Requested)
}
