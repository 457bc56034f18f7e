package repository

import "errors"

// ErrNotFound is returned when a document addressed by id does not exist.
var ErrNotFound = errors.New("not found")

// DefaultListLimit caps list queries when the caller passes no limit.
const DefaultListLimit = 50
