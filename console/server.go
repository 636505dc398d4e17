package console

import (
	"context"
	"errors"
	"io"
	"net"
	"sync/atomic"

	gliderssh "github.com/gliderlabs/ssh"
	"github.com/google/uuid"
	"golang.org/x/crypto/ssh"

	"pkt.systems/pslog"
	"pkt.systems/termclock/core"
	"pkt.systems/termclock/internal/logx"
	"pkt.systems/termclock/schema"
)

// SessionFactory builds the session for one SSH channel. lifecycle cannot
// restart the process.
type SessionFactory func(id schema.SessionID, lifecycle core.Lifecycle) (*core.Session, error)

// Server exposes the console over SSH. Every channel runs its own session.
type Server struct {
	Addr           string
	HostKeyPath    string
	Listener       net.Listener
	AuthorizedKeys *AuthorizedKeys
	NewSession     SessionFactory
	Theme          schema.ThemeName
	Title          string
	// MaxSessions caps concurrent channels; zero means no limit.
	MaxSessions int

	active atomic.Int32
	logger pslog.Logger
}

// ListenAndServe starts the SSH server and shuts down on context cancellation.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.logger == nil {
		s.logger = pslog.Ctx(ctx)
	}
	if s.AuthorizedKeys == nil {
		return errors.New("authorized keys are required for SSH")
	}
	if s.NewSession == nil {
		return errors.New("session factory is required")
	}
	signer, err := EnsureHostKey(s.HostKeyPath)
	if err != nil {
		return err
	}

	server := &gliderssh.Server{
		Addr:             s.Addr,
		Handler:          s.handleSession,
		PublicKeyHandler: s.handlePublicKey,
	}
	server.AddHostKey(signer)

	errCh := make(chan error, 1)
	go func() {
		if s.Listener != nil {
			errCh <- server.Serve(s.Listener)
			return
		}
		errCh <- server.ListenAndServe()
	}()
	s.logger.Info("ssh listening", "addr", s.Addr, "fingerprint", ssh.FingerprintSHA256(signer.PublicKey()))

	select {
	case <-ctx.Done():
		_ = server.Close()
		return nil
	case err := <-errCh:
		if errors.Is(err, gliderssh.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handlePublicKey(ctx gliderssh.Context, key gliderssh.PublicKey) bool {
	log := s.logger.With("user", ctx.User(), "remote", remoteAddr(ctx), "fingerprint", ssh.FingerprintSHA256(key))
	ok, err := s.AuthorizedKeys.Allowed(key)
	if err != nil {
		log.Warn("ssh pubkey rejected", "err", err)
		return false
	}
	if !ok {
		log.Warn("ssh pubkey rejected", "reason", "no matching key")
		return false
	}
	log.Info("ssh pubkey accepted")
	return true
}

func remoteAddr(ctx gliderssh.Context) string {
	if ctx == nil || ctx.RemoteAddr() == nil {
		return ""
	}
	return ctx.RemoteAddr().String()
}

func (s *Server) handleSession(sess gliderssh.Session) {
	id := schema.SessionID(uuid.NewString())
	base := s.logger.With("user", sess.User(), "remote", sess.RemoteAddr().String())
	log := logx.WithSession(base, id)

	pty, winCh, ok := sess.Pty()
	if !ok {
		log.Info("ssh session rejected", "reason", "pty required")
		_, _ = io.WriteString(sess, "pty required\n")
		_ = sess.Exit(1)
		return
	}
	if n := s.active.Add(1); s.MaxSessions > 0 && int(n) > s.MaxSessions {
		s.active.Add(-1)
		log.Warn("ssh session rejected", "reason", "too many sessions", "max", s.MaxSessions)
		_, _ = io.WriteString(sess, "too many sessions\r\n")
		_ = sess.Exit(1)
		return
	}
	defer s.active.Add(-1)

	lifecycle := NewLifecycle(nil)
	session, err := s.NewSession(id, lifecycle)
	if err != nil {
		log.Error("ssh session setup failed", "err", err)
		_ = sess.Exit(1)
		return
	}

	ctx := pslog.ContextWithLogger(sess.Context(), base)
	resize := make(chan Size, 1)
	go func() {
		for win := range winCh {
			offerSize(resize, Size{Width: win.Width, Height: win.Height})
		}
	}()

	terminal, err := NewTerminal(TerminalConfig{
		Session:   session,
		Lifecycle: lifecycle,
		In:        sess,
		Out:       sess,
		Theme:     s.Theme,
		Title:     s.Title,
		Size:      Size{Width: pty.Window.Width, Height: pty.Window.Height},
		Resize:    resize,
	})
	if err != nil {
		log.Error("ssh session setup failed", "err", err)
		_ = sess.Exit(1)
		return
	}
	log.Info("ssh session opened", "term", pty.Term)
	code, err := terminal.Run(ctx)
	if err != nil && !errors.Is(err, ErrInputClosed) && !errors.Is(err, context.Canceled) {
		log.Warn("ssh session ended", "err", err)
	}
	_ = sess.Exit(code)
	log.Info("ssh session closed", "exit_code", code)
}
