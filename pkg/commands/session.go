package commands

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tableflip.dev/sip/pkg/app"
	"tableflip.dev/sip/pkg/commands/options"
	"tableflip.dev/sip/pkg/store"
)

// session carries what every command shares for one invocation.
type session struct {
	output  options.OutputOptions
	verbose options.VerboseOptions

	settings *store.Settings
	log      *logrus.Logger
	launcher *app.Launcher

	// interactive reports whether a person can answer prompts.
	interactive func() bool
}

func newSession() *session {
	return &session{
		interactive: func() bool {
			fd := os.Stdin.Fd()
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
	}
}

// setup loads configuration and the logger; it runs before every command.
func (s *session) setup(cmd *cobra.Command) error {
	settings, err := store.LoadConfig()
	if err != nil {
		return err
	}
	s.settings = settings

	s.log = logrus.New()
	s.log.SetOutput(cmd.ErrOrStderr())
	level, err := logrus.ParseLevel(settings.LogLevel)
	if err != nil {
		s.log.WithError(err).Warn("unknown log_level, using warn")
		level = logrus.WarnLevel
	}
	if s.verbose.Verbose {
		level = logrus.DebugLevel
	}
	s.log.SetLevel(level)

	s.output.Out = cmd.OutOrStdout()

	debounce := settings.Debounce
	if debounce == 0 {
		// A configured zero means write straight away.
		debounce = -1
	}
	s.launcher = app.NewLauncher(app.Options{
		Store:    settings,
		Log:      s.log,
		Debounce: debounce,
	})
	return nil
}

// run opens the state service, hands it to f and closes it again so every
// change is on disk before the process exits.
func (s *session) run(cmd *cobra.Command, f func(ctx context.Context, svc *app.Service, out io.Writer) error) error {
	cmd.SilenceUsage = true
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if s.launcher == nil {
		return s.output.HandleError(errors.New("commands: session not set up"))
	}
	svc, err := s.launcher.Ready(ctx)
	if err != nil {
		return s.output.HandleError(err)
	}
	if svc.Degraded() {
		s.log.Warn("no persistent storage available, changes will not be kept")
	}

	err = f(ctx, svc, cmd.OutOrStdout())
	// Close with a fresh context so an interrupt still flushes.
	err = errors.Join(err, svc.Close(context.WithoutCancel(ctx)))

	st := svc.Stats()
	s.log.WithFields(logrus.Fields{
		"backend":      svc.Backend(),
		"saves":        st.Saves,
		"writes":       st.Writes,
		"write_errors": st.WriteErrors,
		"coalesced":    st.Coalesced,
	}).Debug("state closed")

	return s.output.HandleError(err)
}
