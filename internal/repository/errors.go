// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and services to distinguish between different failure
// scenarios. For example, ErrConflict signals that a conditional write
// lost a race against a concurrent writer (the compare-and-swap on the
// ticket counter), while ErrNotFound indicates that the requested row
// does not exist.
package repository

import "errors"

// ErrConflict is returned when a conditional update affected no rows
// because another caller changed the row first. For the counter this is
// the normal signal that a concurrent allocation won the race; callers
// re-read and retry.
var ErrConflict = errors.New("conflict")

// ErrNotFound is returned when a lookup matches no row. It wraps the
// distinction away from sql.ErrNoRows so handlers do not import
// database/sql just to classify an error.
var ErrNotFound = errors.New("not found")
