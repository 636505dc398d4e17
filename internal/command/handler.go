package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"pkt.systems/pslog"
	"pkt.systems/termclock/schema"
)

// Query is an external collaborator that answers one informational command
// with formatted text. arg is the untouched remainder of the input line.
type Query interface {
	Run(ctx context.Context, arg string) (string, error)
}

// QueryFunc adapts a function to Query.
type QueryFunc func(ctx context.Context, arg string) (string, error)

// Run calls f.
func (f QueryFunc) Run(ctx context.Context, arg string) (string, error) {
	return f(ctx, arg)
}

// HandlerConfig configures command dispatch.
type HandlerConfig struct {
	// Queries maps upper-case command names to collaborators.
	Queries             map[string]Query
	DisableAuditLogging bool
}

// Handler interprets input lines.
type Handler struct {
	cfg HandlerConfig
}

// queryCommands are delegated to a Query; argRequired names what must follow them.
var queryCommands = map[string]string{
	"DATE":       "",
	"TIME":       "",
	"PING":       "host name or IP address required",
	"IPCONFIG":   "",
	"NETSTAT":    "",
	"SYSTEMINFO": "",
	"TASKLIST":   "",
	"VOL":        "",
	"DIR":        "",
	"TYPE":       "file name required",
	"HOSTNAME":   "",
	"WHOAMI":     "",
	"UPTIME":     "",
	"QR":         "text required",
}

const invalidCommand = "Bad command or file name. Type 'HELP'."

// NewHandler constructs a command handler.
func NewHandler(cfg HandlerConfig) *Handler {
	queries := make(map[string]Query, len(cfg.Queries))
	for name, q := range cfg.Queries {
		if q != nil {
			queries[strings.ToUpper(name)] = q
		}
	}
	cfg.Queries = queries
	return &Handler{cfg: cfg}
}

// Execute interprets one input line. Empty input produces no output.
func (h *Handler) Execute(ctx context.Context, line string) schema.CommandResult {
	cmd, ok := Parse(line)
	if !ok {
		return schema.CommandResult{}
	}
	log := pslog.Ctx(ctx).With("command", cmd.Name, "args", len(cmd.Args))
	if !h.cfg.DisableAuditLogging {
		log.Debug("audit command", "input", cmd.Raw)
	}
	switch cmd.Name {
	case "HELP":
		return output(helpLines()...)
	case "CLEAR", "CLS":
		return schema.CommandResult{Action: schema.ActionClear}
	case "UPDATE":
		return schema.CommandResult{Action: schema.ActionCheckUpdate}
	case "EXIT":
		return schema.CommandResult{Action: schema.ActionExit}
	case "ECHO":
		if cmd.Remainder == "" {
			return schema.CommandResult{}
		}
		return output(cmd.Remainder)
	case "VER":
		return h.handleVer(ctx)
	case "HEX":
		hex, err := DecToHex(cmd.Arg(0))
		if err != nil {
			log.Debug("command rejected", "err", err)
			return output(errorLine(err))
		}
		return output(fmt.Sprintf("%s (DEC) = %s (HEX)", cmd.Arg(0), hex))
	case "DEC":
		dec, err := HexToDec(cmd.Arg(0))
		if err != nil {
			log.Debug("command rejected", "err", err)
			return output(errorLine(err))
		}
		return output(fmt.Sprintf("%s (HEX) = %d (DEC)", cmd.Arg(0), dec))
	case "SQRT", "POW", "LOG", "LOG10", "SIN", "COS", "TAN":
		line, err := evalMath(cmd)
		if err != nil {
			log.Debug("command rejected", "err", err)
			return output(errorLine(err))
		}
		return output(line)
	}
	if missing, ok := queryCommands[cmd.Name]; ok {
		if missing != "" && strings.TrimSpace(cmd.Remainder) == "" {
			return output(errorLine(errors.New(missing)))
		}
		return h.runQuery(ctx, log, cmd)
	}
	log.Debug("command unknown")
	return output(invalidCommand)
}

func (h *Handler) runQuery(ctx context.Context, log pslog.Logger, cmd Command) schema.CommandResult {
	q, ok := h.cfg.Queries[cmd.Name]
	if !ok {
		log.Warn("command unavailable")
		return output(errorLine(schema.ErrQueryUnavailable))
	}
	text, err := q.Run(ctx, strings.TrimSpace(cmd.Remainder))
	if err != nil {
		log.Warn("command failed", "err", err)
		if text != "" {
			return output(text, errorLine(err))
		}
		return output(errorLine(err))
	}
	log.Trace("command completed")
	if text == "" {
		return schema.CommandResult{}
	}
	return output(strings.TrimRight(text, "\n"))
}

func (h *Handler) handleVer(ctx context.Context) schema.CommandResult {
	lines := []string{schema.ProductVersion}
	if q, ok := h.cfg.Queries["VER"]; ok {
		text, err := q.Run(ctx, "")
		if err != nil {
			pslog.Ctx(ctx).Warn("command failed", "command", "VER", "err", err)
		} else if text != "" {
			lines = append(lines, strings.TrimRight(text, "\n"))
		}
	}
	return output(lines...)
}

func evalMath(cmd Command) (string, error) {
	arg := cmd.Arg(0)
	switch cmd.Name {
	case "SQRT":
		v, err := Sqrt(arg)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("sqrt(%s) = %s", arg, formatFloat(v)), nil
	case "POW":
		v, err := Pow(arg, cmd.Arg(1))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s^%s = %s", arg, cmd.Arg(1), formatFloat(v)), nil
	case "LOG":
		v, err := Ln(arg)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("ln(%s) = %s", arg, formatFloat(v)), nil
	case "LOG10":
		v, err := Log10(arg)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("log10(%s) = %s", arg, formatFloat(v)), nil
	default:
		v, err := Trig(cmd.Name, arg)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s deg) = %s", cmd.Name, arg, formatFloat(v)), nil
	}
}

func output(lines ...string) schema.CommandResult {
	return schema.CommandResult{Lines: lines}
}

// errorLine renders err as a marked "ERROR: ..." line.
func errorLine(err error) string {
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = schema.ErrInvalidNumericInput.Error()
	}
	r, size := utf8.DecodeRuneInString(msg)
	msg = string(unicode.ToUpper(r)) + msg[size:]
	if !strings.HasSuffix(msg, ".") {
		msg += "."
	}
	return schema.ErrorMarker + "ERROR: " + msg
}

func helpLines() []string {
	return []string{
		"Available commands:",
		"  DATE           - Show the current date.",
		"  TIME           - Show the current time.",
		"  CLEAR / CLS    - Clear the console.",
		"  UPDATE         - Check for and install updates.",
		"  EXIT           - Start the system shutdown.",
		"  HELP           - Show this help.",
		"  ECHO <text>    - Print the given text.",
		"  VER            - Show the version.",
		"  VOL            - Show the volume label and free space.",
		"  DIR            - List the current directory.",
		"  TYPE <file>    - Show the contents of a text file.",
		"  HOSTNAME       - Show the host name.",
		"  WHOAMI         - Show the current user.",
		"  UPTIME         - Show the system uptime.",
		"  QR <text>      - Render text as a QR code.",
		"",
		"Network tools:",
		"  PING <host>    - Send ICMP echo requests to a host.",
		"  IPCONFIG       - Show the network configuration.",
		"  NETSTAT        - Show active TCP connections.",
		"",
		"System tools:",
		"  SYSTEMINFO     - Show system information.",
		"  TASKLIST       - List running processes.",
		"",
		"Math & conversion:",
		"  SQRT <n>, POW <a> <b>, LOG <n>, LOG10 <n>, SIN/COS/TAN <deg>",
		"  HEX <decimal>, DEC <hex>",
	}
}
