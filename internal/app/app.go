// Package app wires configuration, connection and terminal into a running
// shell.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/multierr"

	"github.com/kobzarvs/qsql/internal/config"
	"github.com/kobzarvs/qsql/internal/editor"
	"github.com/kobzarvs/qsql/internal/history"
	"github.com/kobzarvs/qsql/internal/input"
	"github.com/kobzarvs/qsql/internal/logger"
	"github.com/kobzarvs/qsql/internal/profile"
	"github.com/kobzarvs/qsql/internal/session"
	"github.com/kobzarvs/qsql/internal/sqlexec"
	"github.com/kobzarvs/qsql/internal/terminal"
	"github.com/kobzarvs/qsql/internal/treesitter"
	"github.com/kobzarvs/qsql/internal/viewer"
)

// Options is what the command line asked for.
type Options struct {
	// Profile names a saved profile to connect with.
	Profile string
	// Connection is used as is when Direct is set.
	Connection profile.ConnectionOptions
	Direct     bool
	Debug      bool
}

// App is the top-level runtime for qsql.
type App struct {
	opts Options
}

func New(opts Options) *App {
	return &App{opts: opts}
}

func (a *App) Run(ctx context.Context) (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log.File, cfg.Log.Debug || a.opts.Debug); err != nil {
		return err
	}
	defer logger.Close()

	sess := openSession()
	name, conn, err := a.resolve(sess)
	if err != nil {
		return err
	}
	conn = profile.FillPassword(conn)

	exec, err := sqlexec.Open(ctx, sqlexec.Options{
		Driver:      conn.Driver,
		DSN:         conn.DSN(),
		NullDisplay: cfg.Shell.NullDisplay,
	})
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	sess.MarkProfileUsed(name, time.Now())
	logger.Info("connected", "profile", name, "driver", conn.Driver, "host", conn.Host, "dbname", conn.DBName)

	hist := openHistory(cfg)

	tty, err := terminal.Open()
	if err != nil {
		return multierr.Combine(err, exec.Close(), hist.Close(), sess.Save())
	}
	guard, err := tty.EnterRaw()
	if err != nil {
		return multierr.Combine(fmt.Errorf("raw mode: %w", err), exec.Close(), hist.Close(), sess.Save())
	}
	defer func() {
		err = multierr.Combine(err, guard.Restore(), hist.Close(), exec.Close(), sess.Save())
	}()

	var hl editor.Highlighter
	if cfg.Shell.Highlight {
		hl = treesitter.New(cfg.Theme)
	}
	shell := NewShell(tty, input.NewNormalizer(cfg.Input.CtrlArrows), hist, exec,
		viewer.NewPager(pagerStyle(cfg.Theme)), ShellOptions{
			Prompt:      cfg.Shell.Prompt,
			PromptStyle: treesitter.SGR(treesitter.ParseColor(cfg.Theme.Prompt, tcell.ColorDefault)),
			ErrorStyle:  treesitter.SGR(treesitter.ParseColor(cfg.Theme.Error, tcell.ColorDefault)),
			PagerMode:   cfg.Shell.Pager,
			ClearScreen: cfg.Shell.ClearOnStart,
			Highlighter: hl,
		})
	return shell.Run(ctx)
}

// resolve decides what to connect to: explicit options, a named profile, or
// whatever the user picks from the saved profiles.
func (a *App) resolve(sess *session.Manager) (string, profile.ConnectionOptions, error) {
	if a.opts.Direct {
		return "", a.opts.Connection.WithDefaults(), nil
	}
	store, err := profile.DefaultStore()
	if err != nil {
		return "", profile.ConnectionOptions{}, err
	}
	if a.opts.Profile != "" {
		c, err := store.Load(a.opts.Profile)
		if err != nil {
			return "", profile.ConnectionOptions{}, err
		}
		return a.opts.Profile, c.WithDefaults(), nil
	}
	name, c, err := store.Choose(sess.LastProfile())
	if err != nil {
		return "", profile.ConnectionOptions{}, err
	}
	return name, c.WithDefaults(), nil
}

func openSession() *session.Manager {
	sess, err := session.NewManager()
	if err == nil {
		return sess
	}
	logger.Warn("session state unavailable", "err", err)
	dir, derr := config.ConfigDir()
	if derr != nil {
		return session.Open(filepath.Join(os.TempDir(), "qsql-session.json"))
	}
	return session.Open(filepath.Join(dir, "session.json"))
}

func openHistory(cfg config.Config) *history.Store {
	if !cfg.Shell.History {
		return history.New()
	}
	path, err := cfg.HistoryPath()
	if err != nil {
		logger.Warn("history path unavailable", "err", err)
		return history.New()
	}
	return history.Load(path)
}

func pagerStyle(theme config.Theme) tcell.Style {
	return tcell.StyleDefault.
		Foreground(treesitter.ParseColor(theme.PagerForeground, tcell.ColorDefault)).
		Background(treesitter.ParseColor(theme.PagerBackground, tcell.ColorDefault))
}
