package diff

import (
	"errors"
	"fmt"
)

// Side names which export an error came from.
type Side string

const (
	Followers Side = "followers"
	Following Side = "following"
)

// ExtractionError reports an entry whose href/value could not be read.
// It aborts the whole computation on the first bad entry.
type ExtractionError struct {
	Side   Side
	Index  int
	Detail string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("Error processing %s data: entry %d: %s", e.Side, e.Index, e.Detail)
}

// EntryShapeError reports an entry whose JSON types do not fit the export
// layout, such as an entry that is not an object or a null string_list_data.
// It is not a client error.
type EntryShapeError struct {
	Side   Side
	Index  int
	Detail string
}

func (e *EntryShapeError) Error() string {
	return fmt.Sprintf("%s entry %d: %s", e.Side, e.Index, e.Detail)
}

// MalformedExportError reports an export whose top level could not be used:
// invalid JSON, or a shape other than the documented ones. Error returns the
// underlying decoder text unchanged.
type MalformedExportError struct {
	Side Side
	Err  error
}

func (e *MalformedExportError) Error() string {
	return e.Err.Error()
}

func (e *MalformedExportError) Unwrap() error {
	return e.Err
}

var errNotObject = errors.New("top-level value is not an object")
