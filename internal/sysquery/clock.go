package sysquery

import (
	"context"
	"time"
)

// Clock answers DATE and TIME.
type Clock struct {
	Now func() time.Time
}

func (c Clock) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Date reports the current local date as DD.MM.YYYY.
func (c Clock) Date(context.Context, string) (string, error) {
	return "Current date is " + c.now().Format("02.01.2006"), nil
}

// Time reports the current local time as HH:MM:SS.
func (c Clock) Time(context.Context, string) (string, error) {
	return "Current time is " + c.now().Format("15:04:05"), nil
}
