// Package sysquery answers the informational console commands from the host
// operating system.
package sysquery

import (
	"os"
	"time"

	"pkt.systems/termclock/internal/command"
)

// Config controls the query collaborators.
type Config struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
	// Dir is the directory listed by DIR and used to resolve TYPE paths.
	// Defaults to the process working directory.
	Dir string
	// TypeMaxBytes caps how much of a file TYPE prints.
	TypeMaxBytes int64
	// PingCount is the number of echo requests PING sends.
	PingCount int
	// PingTimeout bounds each echo request.
	PingTimeout time.Duration
	// PingInterval is the pause between echo requests. Negative disables it.
	PingInterval time.Duration
	// TasklistMax caps the TASKLIST rows.
	TasklistMax int
}

const (
	defaultTypeMaxBytes = 64 << 10
	defaultPingCount    = 4
	defaultPingTimeout  = time.Second
	defaultPingInterval = time.Second
	defaultTasklistMax  = 200
)

func (c Config) withDefaults() Config {
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Dir == "" {
		if wd, err := os.Getwd(); err == nil {
			c.Dir = wd
		} else {
			c.Dir = "."
		}
	}
	if c.TypeMaxBytes <= 0 {
		c.TypeMaxBytes = defaultTypeMaxBytes
	}
	if c.PingCount <= 0 {
		c.PingCount = defaultPingCount
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = defaultPingTimeout
	}
	if c.PingInterval < 0 {
		c.PingInterval = 0
	} else if c.PingInterval == 0 {
		c.PingInterval = defaultPingInterval
	}
	if c.TasklistMax <= 0 {
		c.TasklistMax = defaultTasklistMax
	}
	return c
}

// Queries returns every collaborator keyed by command name.
func Queries(cfg Config) map[string]command.Query {
	cfg = cfg.withDefaults()
	clock := Clock{Now: cfg.Now}
	files := Files{Dir: cfg.Dir, MaxBytes: cfg.TypeMaxBytes}
	pinger := Pinger{Count: cfg.PingCount, Timeout: cfg.PingTimeout, Interval: cfg.PingInterval}
	return map[string]command.Query{
		"DATE":       command.QueryFunc(clock.Date),
		"TIME":       command.QueryFunc(clock.Time),
		"PING":       command.QueryFunc(pinger.Run),
		"IPCONFIG":   command.QueryFunc(Ipconfig),
		"NETSTAT":    command.QueryFunc(Netstat),
		"SYSTEMINFO": command.QueryFunc(SystemInfo),
		"TASKLIST":   command.QueryFunc(Tasklist{Max: cfg.TasklistMax}.Run),
		"UPTIME":     command.QueryFunc(Uptime),
		"VOL":        command.QueryFunc(files.Vol),
		"DIR":        command.QueryFunc(files.List),
		"TYPE":       command.QueryFunc(files.Type),
		"HOSTNAME":   command.QueryFunc(Hostname),
		"WHOAMI":     command.QueryFunc(Whoami),
		"VER":        command.QueryFunc(Ver),
		"QR":         command.QueryFunc(QR),
	}
}
