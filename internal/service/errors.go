package service

import "errors"

var (
	// ErrNotLinkTable is returned when a link operation targets a table
	// that does not carry exactly two foreign keys.
	ErrNotLinkTable = errors.New("table is not a link table")
	// ErrUnknownColumn is returned when an option query names a column
	// the table does not declare.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrEmptyPayload is returned when a record submission carries no
	// domain columns at all.
	ErrEmptyPayload = errors.New("record payload is empty")
)
