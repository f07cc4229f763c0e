package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrNotTabular is returned when a source holds an HTML page instead of CSV data.
	ErrNotTabular = errors.New("source is not tabular data")
	// ErrUndecodable is returned when no configured encoding can decode a source.
	ErrUndecodable = errors.New("source cannot be decoded")
	// ErrMissingColumns is returned when a required field has no matching column.
	ErrMissingColumns = errors.New("required columns missing")
)

// SourceError ties a load failure to the source it came from
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
