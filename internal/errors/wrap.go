package errors

import (
	"errors"
	"fmt"
)

// Step is a stage of the document pipeline that can fail.
type Step string

const (
	StepStore   Step = "store"   // persisting an uploaded asset
	StepResolve Step = "resolve" // loading an image a record references
	StepPublish Step = "publish" // uploading an artifact to object storage
)

// StepError ties a failure to the pipeline step and the artifact or asset it
// was working on. Public is the only part shown to API callers.
type StepError struct {
	Step    Step
	Subject string // artifact name, object key or asset kind
	Public  string
	Cause   error
}

// AtStep starts a StepError for subject. Call Wrap or Wrapf to attach the cause.
func AtStep(step Step, subject string) StepError {
	return StepError{Step: step, Subject: subject}
}

// Wrap attaches err and the public message. Returns nil if err is nil.
func (e StepError) Wrap(err error, public string) error {
	if err == nil {
		return nil
	}
	e.Cause = err
	e.Public = public
	return &e
}

// Wrapf is Wrap with a formatted public message.
func (e StepError) Wrapf(err error, format string, args ...any) error {
	return e.Wrap(err, fmt.Sprintf(format, args...))
}

func (e *StepError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("%s: %s: %v", e.Step, e.Public, e.Cause)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Step, e.Subject, e.Public, e.Cause)
}

func (e *StepError) Unwrap() error {
	return e.Cause
}

// PublicMessage returns the caller-facing message of the outermost StepError
// in err's chain, or err's text when there is none.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *StepError
	if errors.As(err, &se) {
		return se.Public
	}
	return err.Error()
}

// StepOf reports which pipeline step failed, if err carries one.
func StepOf(err error) (Step, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step, true
	}
	return "", false
}
