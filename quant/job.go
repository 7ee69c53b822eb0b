package quant

import (
	"context"
	"errors"
	"fmt"

	"github.com/kballard/go-shellquote"
)

// Job is one kallisto invocation for one sample.
type Job struct {
	SampleID string
	OutDir   string
	LogDir   string

	// Args is the full argv, starting with the kallisto binary.
	Args []string
}

// Command renders Args as a single shell-quoted string.
func (j Job) Command() string {
	return shellquote.Join(j.Args...)
}

// Submitter hands a job to an external scheduler. Submit returns once the
// scheduler has accepted (or refused) the job; it never waits for the job to
// run, and job completion is never reported back.
type Submitter interface {
	Submit(ctx context.Context, job Job) error
}

var ErrSubmission = errors.New("submission failed")

// SubmissionError records that one sample's job could not be handed to the
// scheduler, or could not be built.
type SubmissionError struct {
	SampleID string
	Err      error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("sample %s: %s: %v", e.SampleID, ErrSubmission, e.Err)
}

func (e *SubmissionError) Unwrap() []error { return []error{ErrSubmission, e.Err} }
