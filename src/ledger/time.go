package ledger

import "time"

// TimePointSec is a point in time with second precision, counted from the
// unix epoch.
type TimePointSec uint32

// NewTimePointSec truncates t to seconds.
func NewTimePointSec(t time.Time) TimePointSec {
	return TimePointSec(t.Unix())
}

// Time returns the point as a UTC time.Time.
func (t TimePointSec) Time() time.Time {
	return time.Unix(int64(t), 0).UTC()
}

// Add returns t shifted by s seconds.
func (t TimePointSec) Add(s uint32) TimePointSec {
	return t + TimePointSec(s)
}

func (t TimePointSec) String() string {
	return t.Time().Format("2006-01-02T15:04:05")
}
