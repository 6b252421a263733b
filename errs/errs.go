// Package errs defines the failure taxonomy shared by every pipeline stage.
//
// Stage packages return the sentinels below, usually wrapped in a StageError
// so callers can match on the cause with errors.Is while the message still
// names the stage (and, for regression failures, the specification).
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResult means the CPI and PCE series share no dates.
	ErrEmptyResult = errors.New("aligned panel is empty")
	// ErrAnchorNotFound means the index anchor date is not a row of the aligned panel.
	ErrAnchorNotFound = errors.New("anchor date not found in panel")
	// ErrInsufficientData means too few complete rows remain for the regressor count.
	ErrInsufficientData = errors.New("insufficient observations")
	// ErrSingularMatrix means the design matrix is not of full column rank.
	ErrSingularMatrix = errors.New("design matrix is rank deficient")
	// ErrDuplicateDate means an input series repeats a date.
	ErrDuplicateDate = errors.New("duplicate date in series")
	// ErrMalformedSeries means timestamps and values disagree in length.
	ErrMalformedSeries = errors.New("malformed series")
	// ErrMissingCoefficient means a fitted model lacks a term the interpreter needs.
	ErrMissingCoefficient = errors.New("coefficient not found")
	// ErrUnknownColumn means a regression asked for a column the panel does not carry.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrQualityCheck means the quality report failed and modeling must not run.
	ErrQualityCheck = errors.New("quality check failed")
)

// Stage names used in StageError.
const (
	StageAcquire   = "acquire"
	StageAlign     = "align"
	StageEnrich    = "enrich"
	StageQuality   = "quality"
	StagePrepare   = "prepare"
	StageRegress   = "regress"
	StageInterpret = "interpret"
	StagePersist   = "persist"
)

// StageError ties a failure to the stage (and optional model specification)
// that produced it.
type StageError struct {
	Stage string
	Spec  string
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	if e.Spec != "" {
		return fmt.Sprintf("%s [%s]: %v", e.Stage, e.Spec, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *StageError) Unwrap() error {
	return e.Err
}

// Wrap returns err annotated with stage, or nil when err is nil.
func Wrap(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// WrapSpec is Wrap with a model specification name.
func WrapSpec(stage, spec string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Spec: spec, Err: err}
}

// StageOf reports the stage recorded in err's chain, if any.
func StageOf(err error) (string, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
