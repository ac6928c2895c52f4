// Package time holds small time helpers shared by repos and schedulers
package time

import "time"

// Ptr returns &t, or nil when t is the zero time (for nullable columns)
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Deref returns *pt, or the zero time when pt is nil
func Deref(pt *time.Time) time.Time {
	if pt == nil {
		return time.Time{}
	}
	return *pt
}

// UTC normalizes to UTC with microsecond precision, matching what Postgres
// timestamptz hands back so round-tripped values compare equal
func UTC(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
