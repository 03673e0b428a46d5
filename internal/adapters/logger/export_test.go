package logger

import "time"

var (
	CollectErrorMessages = collectErrorMessages
	FormatErrorMessages  = formatErrorMessages
)

// SetClock replaces the clock used for announcement timestamps.
func (l *Logger) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}
