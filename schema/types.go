package schema

// SessionID identifies one interactive session (local console or SSH channel).
type SessionID string

// ThemeName identifies a console color theme.
type ThemeName string

// SessionState is the interpreter state of a session.
type SessionState int

const (
	// StateNormal accepts commands.
	StateNormal SessionState = iota
	// StateAwaitingUpdateConfirmation accepts only a Y/N answer.
	StateAwaitingUpdateConfirmation
	// StateCountdownActive ignores input until the process terminates.
	StateCountdownActive
)

func (s SessionState) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateAwaitingUpdateConfirmation:
		return "awaiting-update-confirmation"
	case StateCountdownActive:
		return "countdown-active"
	default:
		return "unknown"
	}
}

// Action is a state transition requested by a command.
type Action int

const (
	// ActionNone only appends output.
	ActionNone Action = iota
	// ActionClear empties the output buffer.
	ActionClear
	// ActionCheckUpdate runs an update check.
	ActionCheckUpdate
	// ActionExit starts the shutdown countdown.
	ActionExit
)

// CommandResult is the outcome of interpreting one input line.
type CommandResult struct {
	Lines  []string
	Action Action
}

// UpdateStatus classifies the result of an update check.
type UpdateStatus int

const (
	// UpdateCheckFailed means the sizes could not be compared.
	UpdateCheckFailed UpdateStatus = iota
	// UpdateUpToDate means remote and local sizes match.
	UpdateUpToDate
	// UpdateAvailable means the remote executable differs in size.
	UpdateAvailable
)

func (s UpdateStatus) String() string {
	switch s {
	case UpdateUpToDate:
		return "up-to-date"
	case UpdateAvailable:
		return "available"
	default:
		return "failed"
	}
}

// UpdateCheck is the ephemeral result of comparing remote and local executables.
type UpdateCheck struct {
	Status     UpdateStatus
	RemoteSize int64
	LocalSize  int64
	Err        error
}
