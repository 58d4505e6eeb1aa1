package util

import "time"

// NowUTC exposes time.Now for deterministic testing; settle timestamps use it.
func NowUTC() time.Time {
	return time.Now().UTC()
}
