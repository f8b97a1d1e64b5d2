package dashboard

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/logging"
	"github.com/thoreinstein/mcpm/internal/watch"
)

// Run shows the dashboard until the user quits or ctx is cancelled. When
// watchFiles is set, edits to any client config file trigger a rescan.
//
// The dashboard owns the terminal, so opts.Logger must not write to it; a
// nil logger discards.
func Run(ctx context.Context, opts Options, watchFiles bool) error {
	if opts.Logger == nil {
		opts.Logger = logging.NewDiscard()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if watchFiles && opts.Changes == nil {
		w, err := watch.New(watch.Targets(opts.Cwd), watch.WithLogger(opts.Logger))
		if err != nil {
			opts.Logger.Warn("config file watching disabled", "error", err)
		} else {
			go func() { _ = w.Run(ctx) }()
			opts.Changes = w.Changes()
		}
	}

	m := New(ctx, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return errors.Wrap(err, "running dashboard")
	}
	return nil
}
