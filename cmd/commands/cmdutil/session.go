package cmdutil

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"onmodulus/xervo/internal/services/platform"

	"github.com/spf13/cobra"
)

// Context returns the command's context, canceled on interrupt.
func Context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt)
}

// Session opens an unauthenticated platform session.
func Session() (*platform.Session, error) {
	return platform.Open(slog.Default())
}

// AuthedSession opens a session carrying the stored token.
func AuthedSession() (*platform.Session, error) {
	s, err := Session()
	if err != nil {
		return nil, err
	}
	if err := s.Authenticate(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
