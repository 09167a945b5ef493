package loader

import "fmt"

// MalformedRecordError reports a raw player record that could not be loaded.
// Record is 1-based.
type MalformedRecordError struct {
	Record int
	Field  string
	Value  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("malformed record %d: %s: %s", e.Record, e.Field, e.Reason)
	}
	return fmt.Sprintf("malformed record %d: %s %q: %s", e.Record, e.Field, e.Value, e.Reason)
}

func malformed(record int, field, value, reason string) *MalformedRecordError {
	return &MalformedRecordError{Record: record, Field: field, Value: value, Reason: reason}
}

// MissingColumnError reports a salary export whose header lacks a required
// column. No record has been read when it is returned.
type MissingColumnError struct {
	Column string
	Header []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("invalid header: required column %q is missing", e.Column)
}
