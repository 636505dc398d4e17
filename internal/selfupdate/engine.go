// Package selfupdate replaces the running executable with a newer build
// fetched over HTTP.
package selfupdate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/termclock/schema"
)

const (
	tmpSuffix           = ".tmp"
	oldSuffix           = ".old"
	defaultCheckTimeout = 15 * time.Second
)

// Config configures an Engine.
type Config struct {
	// URL serves the latest executable.
	URL string
	// Path is the canonical executable path. Defaults to ExecutablePath.
	Path string
	// Client defaults to a client without a global timeout.
	Client *http.Client
	// FS defaults to OSFileSystem.
	FS FileSystem
	// CheckTimeout bounds CheckForUpdate.
	CheckTimeout time.Duration
	// DownloadTimeout bounds the download in PerformUpdate; zero means no limit.
	DownloadTimeout time.Duration
	UserAgent       string
	Logger          pslog.Logger
}

// Engine checks for and installs updates of one executable.
type Engine struct {
	cfg Config
}

// ExecutablePath returns the running executable with symlinks resolved.
func ExecutablePath() (string, error) {
	path, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	return path, nil
}

// New validates cfg and returns an Engine.
func New(cfg Config) (*Engine, error) {
	cfg.URL = strings.TrimSpace(cfg.URL)
	if cfg.URL == "" {
		return nil, errors.New("update url is required")
	}
	if cfg.Path == "" {
		path, err := ExecutablePath()
		if err != nil {
			return nil, err
		}
		cfg.Path = path
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}
	if cfg.FS == nil {
		cfg.FS = OSFileSystem{}
	}
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = defaultCheckTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "termclock-updater"
	}
	return &Engine{cfg: cfg}, nil
}

// Path returns the canonical executable path.
func (e *Engine) Path() string { return e.cfg.Path }

// TempPath returns the download path next to the executable.
func (e *Engine) TempPath() string { return e.cfg.Path + tmpSuffix }

// BackupPath returns the path the previous version is kept at.
func (e *Engine) BackupPath() string { return e.cfg.Path + oldSuffix }

func (e *Engine) log(ctx context.Context) pslog.Logger {
	if e.cfg.Logger != nil {
		return e.cfg.Logger
	}
	return pslog.Ctx(ctx)
}

// CheckForUpdate compares the remote Content-Length with the local executable
// size. It never touches the filesystem beyond a stat.
func (e *Engine) CheckForUpdate(ctx context.Context) schema.UpdateCheck {
	log := e.log(ctx).With("url", e.cfg.URL)
	info, err := e.cfg.FS.Stat(e.cfg.Path)
	if err != nil {
		log.Warn("update check local stat failed", "path", e.cfg.Path, "err", err)
		return schema.UpdateCheck{Status: schema.UpdateCheckFailed, Err: fmt.Errorf("local executable unreadable: %w", err)}
	}
	local := info.Size()

	ctx, cancel := context.WithTimeout(ctx, e.cfg.CheckTimeout)
	defer cancel()
	remote, err := e.remoteSize(ctx)
	if err != nil {
		log.Warn("update check failed", "err", err)
		return schema.UpdateCheck{Status: schema.UpdateCheckFailed, LocalSize: local, Err: err}
	}
	check := schema.UpdateCheck{RemoteSize: remote, LocalSize: local}
	if remote == local {
		check.Status = schema.UpdateUpToDate
	} else {
		check.Status = schema.UpdateAvailable
	}
	log.Debug("update check completed", "remote_size", remote, "local_size", local, "status", check.Status)
	return check
}

func (e *Engine) remoteSize(ctx context.Context) (int64, error) {
	resp, err := e.do(ctx, http.MethodHead)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	if resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented {
		resp, err = e.do(ctx, http.MethodGet)
		if err != nil {
			return 0, err
		}
		_ = resp.Body.Close()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("update server returned %s", resp.Status)
	}
	if resp.ContentLength <= 0 {
		return 0, errors.New("update size unknown")
	}
	return resp.ContentLength, nil
}

func (e *Engine) do(ctx context.Context, method string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, e.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", e.cfg.UserAgent)
	resp, err := e.cfg.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("update server unreachable: %w", err)
	}
	return resp, nil
}

// PerformUpdate downloads the new executable to P.tmp, moves P to P.old and
// P.tmp to P. When activation fails P.old is moved back. At every step either
// P or P.old holds a runnable executable.
func (e *Engine) PerformUpdate(ctx context.Context) error {
	log := e.log(ctx).With("path", e.cfg.Path)
	path, tmp, old := e.cfg.Path, e.TempPath(), e.BackupPath()

	info, err := e.cfg.FS.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: local executable unreadable: %w", schema.ErrDownloadFailed, err)
	}
	size, err := e.download(ctx, tmp, info.Mode().Perm())
	if err != nil {
		e.removeQuietly(log, tmp)
		log.Warn("update download failed", "err", err)
		return fmt.Errorf("%w: %w", schema.ErrDownloadFailed, err)
	}
	log.Info("update downloaded", "bytes", size)

	if err := e.cfg.FS.Remove(old); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("update stale backup not removed", "backup", old, "err", err)
	}
	if err := e.cfg.FS.Rename(path, old); err != nil {
		e.removeQuietly(log, tmp)
		log.Warn("update backup failed", "err", err)
		return fmt.Errorf("%w: %w", schema.ErrBackupFailed, err)
	}
	if err := e.cfg.FS.Rename(tmp, path); err != nil {
		log.Warn("update activation failed; restoring previous version", "err", err)
		if rerr := e.cfg.FS.Rename(old, path); rerr != nil {
			log.Error("update rollback failed", "backup", old, "download", tmp, "err", rerr)
			return fmt.Errorf("%w: restore %s to %s: %w", schema.ErrRollbackFailed, old, path, rerr)
		}
		e.removeQuietly(log, tmp)
		return fmt.Errorf("%w: %w", schema.ErrActivateFailed, err)
	}
	log.Info("update activated", "backup", old)
	return nil
}

func (e *Engine) download(ctx context.Context, tmp string, perm fs.FileMode) (int64, error) {
	if e.cfg.DownloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.DownloadTimeout)
		defer cancel()
	}
	resp, err := e.do(ctx, http.MethodGet)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("update server returned %s", resp.Status)
	}
	file, err := e.cfg.FS.Create(tmp, 0o600)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", tmp, err)
	}
	n, err := io.Copy(file, resp.Body)
	if err != nil {
		_ = file.Close()
		return n, fmt.Errorf("write %s: %w", tmp, err)
	}
	if resp.ContentLength > 0 && n != resp.ContentLength {
		_ = file.Close()
		return n, fmt.Errorf("short download: got %d of %d bytes", n, resp.ContentLength)
	}
	if n == 0 {
		_ = file.Close()
		return 0, errors.New("empty download")
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return n, fmt.Errorf("sync %s: %w", tmp, err)
	}
	if err := file.Close(); err != nil {
		return n, fmt.Errorf("close %s: %w", tmp, err)
	}
	if perm == 0 {
		perm = 0o755
	}
	if err := e.cfg.FS.Chmod(tmp, perm); err != nil {
		return n, fmt.Errorf("chmod %s: %w", tmp, err)
	}
	return n, nil
}

func (e *Engine) removeQuietly(log pslog.Logger, name string) {
	if err := e.cfg.FS.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("update cleanup failed", "file", name, "err", err)
	}
}
