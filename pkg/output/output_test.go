package output

import (
	"time"

	"github.com/ccollicutt/forensilog/pkg/session"
)

var testCapturedAt = time.Date(2023, 10, 10, 14, 0, 0, 0, time.UTC)

// createTestSession mirrors a small mixed access/application log.
func createTestSession() *session.Session {
	lines := []string{
		`192.168.1.10 - - [10/Oct/2023:13:55:36 +0000] "GET /admin HTTP/1.1" 403`,
		"2023-10-10 14:02:11 ERROR Failed login for user: alice from 10.0.0.5",
		"WARN disk usage at 91%",
		`192.168.1.10 - - [10/Oct/2023:13:56:01 +0000] "GET / HTTP/1.1" 200`,
		"INFO sql injection attempt blocked",
	}
	return session.New("access.log", lines, session.WithClock(func() time.Time { return testCapturedAt }))
}
