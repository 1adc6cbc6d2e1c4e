package dbx

import (
	"database/sql"
	"time"
)

// Timestamps are stored as epoch milliseconds in every backend. Millisecond
// precision is what the sync watermark uses, so a record written and read
// back compares equal against the watermark it was delivered under.

// Millis converts t to epoch milliseconds.
func Millis(t time.Time) int64 { return t.UnixMilli() }

// TimeFromMillis converts epoch milliseconds back to a UTC time.Time.
func TimeFromMillis(m int64) time.Time { return time.UnixMilli(m).UTC() }

// NullMillis converts an optional time to a nullable column value.
func NullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

// TimePtrFromNull converts a nullable column value back to an optional time.
func TimePtrFromNull(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}
