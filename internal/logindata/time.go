package logindata

import "time"

// chromeEpochOffsetSeconds is the number of seconds between the Windows NT
// epoch (1601-01-01 00:00:00 UTC) and the Unix epoch (1970-01-01 00:00:00 UTC).
const chromeEpochOffsetSeconds int64 = 11_644_473_600

// FromChromeMicros converts a Chromium timestamp (microseconds since
// 1601-01-01 UTC) to a time.Time. A zero Chromium timestamp maps to the
// zero time.
func FromChromeMicros(usec int64) time.Time {
	if usec == 0 {
		return time.Time{}
	}
	sec := usec/1_000_000 - chromeEpochOffsetSeconds
	rem := usec % 1_000_000
	return time.Unix(sec, rem*1000).UTC()
}

// ToChromeMicros converts a time.Time to a Chromium timestamp.
// The zero time maps to 0.
func ToChromeMicros(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return (t.Unix()+chromeEpochOffsetSeconds)*1_000_000 + int64(t.Nanosecond()/1000)
}
