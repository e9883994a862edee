package engine

import (
	"errors"

	"github.com/tartampluch/guild-recruiter/internal/config"
)

// Error taxonomy. Callers classify failures with errors.Is; causes are
// wrapped alongside the sentinel.
var (
	ErrWindowNotFound    = errors.New(config.ErrWindowNotFound)
	ErrCapture           = errors.New(config.ErrCapture)
	ErrExtraction        = errors.New(config.ErrExtraction)
	ErrInvite            = errors.New(config.ErrInvite)
	ErrWho               = errors.New(config.ErrWho)
	ErrWhoCooldown       = errors.New(config.ErrWhoCooldown)
	ErrRangeNotNumber    = errors.New(config.ErrRangeNotNumber)
	ErrRangeBounds       = errors.New(config.ErrRangeBounds)
	ErrInvalidTransition = errors.New(config.ErrInvalidTransition)
	ErrRegionMissing     = errors.New(config.ErrRegionMissing)
)
