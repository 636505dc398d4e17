package platform

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/pslog"
)

// AutostartFile is the desktop entry name written to the autostart directory.
const AutostartFile = "termclock.desktop"

// Autostart registers the console to launch at login through an XDG
// autostart desktop entry.
type Autostart struct {
	Dir  string
	Exec string
	log  pslog.Logger
}

// DefaultAutostartDir returns $XDG_CONFIG_HOME/autostart or ~/.config/autostart.
func DefaultAutostartDir() (string, error) {
	if base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); base != "" {
		return filepath.Join(base, "autostart"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Join(home, ".config", "autostart"), nil
}

// NewAutostart returns an autostart toggle writing into dir.
func NewAutostart(dir, execPath string, log pslog.Logger) *Autostart {
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	return &Autostart{Dir: dir, Exec: execPath, log: log}
}

// Path returns the desktop entry path.
func (a *Autostart) Path() string {
	return filepath.Join(a.Dir, AutostartFile)
}

// Registered reports whether the desktop entry exists.
func (a *Autostart) Registered() bool {
	_, err := os.Stat(a.Path())
	return err == nil
}

// Enable writes the desktop entry unless one is already present.
func (a *Autostart) Enable() error {
	if a.Dir == "" || a.Exec == "" {
		return errors.New("autostart dir and exec path are required")
	}
	path := a.Path()
	if _, err := os.Stat(path); err == nil {
		a.log.Trace("autostart already registered", "path", path)
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(a.Dir, ".termclock-*.desktop")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(desktopEntry(a.Exec)); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	a.log.Info("autostart registered", "path", path)
	return nil
}

// Disable removes the desktop entry. A missing entry is not an error.
func (a *Autostart) Disable() error {
	if a.Dir == "" {
		return nil
	}
	if err := os.Remove(a.Path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	a.log.Info("autostart removed", "path", a.Path())
	return nil
}

func desktopEntry(execPath string) string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	b.WriteString("Name=Terminal Clock\n")
	b.WriteString("Comment=Retro terminal shell\n")
	b.WriteString("Exec=" + quoteExec(execPath) + "\n")
	b.WriteString("Terminal=true\n")
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	return b.String()
}

// quoteExec quotes a path for the Exec key of a desktop entry.
func quoteExec(path string) string {
	if !strings.ContainsAny(path, " \t\"'\\$`") {
		return path
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)
	return `"` + r.Replace(path) + `"`
}
