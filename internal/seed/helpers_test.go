package seed

import "time"

func testNow() time.Time {
	return time.Date(2026, 2, 12, 12, 0, 0, 0, time.UTC)
}
