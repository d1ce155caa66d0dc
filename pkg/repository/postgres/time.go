package postgres

import "time"

func unixToTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func timeToUnix(t time.Time) int64 {
	return t.UTC().Unix()
}
