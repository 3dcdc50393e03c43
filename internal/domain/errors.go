package domain

import (
	"errors"
	"fmt"
)

// Error kinds of the discovery pipeline. Only ErrSourceConnection is returned
// from a pipeline run; the others reduce the result set.
var (
	ErrSourceConnection = errors.New("content source connection failed")
	ErrSourceQuery      = errors.New("content source query failed")
	ErrExtraction       = errors.New("signal extraction failed")
	ErrScoreComputation = errors.New("score computation failed")
)

// SourceError describes a failed call against the content source.
type SourceError struct {
	Kind      error
	Subreddit string
	Keyword   string
	Err       error
}

func (e *SourceError) Error() string {
	switch {
	case e.Subreddit != "" && e.Keyword != "":
		return fmt.Sprintf("%v: r/%s %q: %v", e.Kind, e.Subreddit, e.Keyword, e.Err)
	case e.Subreddit != "":
		return fmt.Sprintf("%v: r/%s: %v", e.Kind, e.Subreddit, e.Err)
	default:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *SourceError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// IsSourceConnection reports whether err should abort a run.
func IsSourceConnection(err error) bool {
	return errors.Is(err, ErrSourceConnection)
}
