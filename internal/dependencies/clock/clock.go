package clock

import "time"

// Clock is the time source for session expiry and match timestamps.
type Clock interface {
	Now() time.Time
}

// UTC is the wall clock. Readings are cut to whole milliseconds because
// that is the finest precision every storage backend keeps.
type UTC struct{}

func New() UTC {
	return UTC{}
}

func (UTC) Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
