package runinfo

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingField       = errors.New("missing required field")
	ErrUnsafeSampleName   = errors.New("sample name cannot be used as a folder name")
	ErrInvalidLayout      = errors.New("invalid library layout")
	ErrInvalidSpecies     = errors.New("invalid species")
	ErrInvalidLength      = errors.New("invalid average length")
	ErrInconsistentSample = errors.New("inconsistent sample metadata")
)

type InvalidLayoutError struct {
	Run   string
	Value string
}

func (e *InvalidLayoutError) Error() string {
	return fmt.Sprintf("Invalid Paired End Designation %q for Run %s", e.Value, e.Run)
}

func (e *InvalidLayoutError) Unwrap() error { return ErrInvalidLayout }

type InvalidSpeciesError struct {
	Run     string
	Species string
	Known   []Species
}

func (e *InvalidSpeciesError) Error() string {
	known := make([]string, 0, len(e.Known))
	for _, k := range e.Known {
		known = append(known, string(k))
	}
	return fmt.Sprintf("Invalid Species %q in run %s, expecting one of [%s]", e.Species, e.Run, strings.Join(known, ", "))
}

func (e *InvalidSpeciesError) Unwrap() error { return ErrInvalidSpecies }

type InvalidLengthError struct {
	Run   string
	Value string
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("Invalid avgLength %q in run %s, expecting a non-negative integer", e.Value, e.Run)
}

func (e *InvalidLengthError) Unwrap() error { return ErrInvalidLength }

// InconsistentSampleError is returned when two runs of the same sample
// disagree on a field that must be fixed per sample. Field is the run table
// column name.
type InconsistentSampleError struct {
	Sample string
	Run    string
	Field  string
}

func (e *InconsistentSampleError) Error() string {
	return fmt.Sprintf("%s designation inconsistent for sample %s (at run %s)", e.Field, e.Sample, e.Run)
}

func (e *InconsistentSampleError) Unwrap() error { return ErrInconsistentSample }
