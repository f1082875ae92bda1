package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Timestamp is a Slack-style message timestamp: seconds since the epoch with
// a fractional part, encoded as a decimal string ("1712345678.000123").
// Ordering is numeric, not lexicographic. The zero value sorts before any
// real timestamp.
type Timestamp string

// Float returns the timestamp as fractional seconds since the epoch.
// Unparseable or empty timestamps are treated as zero.
func (t Timestamp) Float() float64 {
	if t == "" {
		return 0
	}
	f, err := strconv.ParseFloat(string(t), 64)
	if err != nil {
		return 0
	}
	return f
}

// Before reports whether t is strictly older than other.
func (t Timestamp) Before(other Timestamp) bool {
	return t.Float() < other.Float()
}

// After reports whether t is strictly newer than other.
func (t Timestamp) After(other Timestamp) bool {
	return t.Float() > other.Float()
}

// Time converts the timestamp to wall-clock time.
func (t Timestamp) Time() time.Time {
	f := t.Float()
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// TimestampFromTime builds a Timestamp from wall-clock time.
func TimestampFromTime(t time.Time) Timestamp {
	return Timestamp(fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/1000))
}
