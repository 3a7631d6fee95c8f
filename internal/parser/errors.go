package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/gymbmi/internal/record"
)

// RequiredColumns must be present in every uploaded table.
var RequiredColumns = []string{record.ColHeight, record.ColWeight}

// OptionalColumns are recognized when present.
var OptionalColumns = []string{record.ColName, record.ColSex, record.ColAge, record.ColRace}

var (
	// ErrEmpty indicates an upload without a header row.
	ErrEmpty = errors.New("no header row")
	// ErrTooManyRows indicates an upload above Options.MaxRows.
	ErrTooManyRows = errors.New("too many rows")
)

// ValidationError rejects a whole table whose header does not satisfy the schema.
type ValidationError struct {
	Source    string
	Missing   []string
	Duplicate []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing required column(s): %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Duplicate) > 0 {
		parts = append(parts, fmt.Sprintf("duplicate column(s): %s", strings.Join(e.Duplicate, ", ")))
	}
	return fmt.Sprintf("invalid table %s: %s (required: %s; optional: %s)",
		e.Source, strings.Join(parts, "; "),
		strings.Join(RequiredColumns, ", "), strings.Join(OptionalColumns, ", "))
}

// ParseError reports an upload that could not be read at all.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "parse error"
	}
	return fmt.Sprintf("read %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
