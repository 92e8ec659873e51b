// Package cli is the qsql command line.
package cli

import (
	"context"
	"fmt"
	"os"

	clog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kobzarvs/qsql/internal/app"
	"github.com/kobzarvs/qsql/internal/profile"
)

// Logger prints user-facing messages to stderr.
var Logger = clog.NewWithOptions(os.Stderr, clog.Options{
	ReportTimestamp: true,
})

var runApp = func(ctx context.Context, opts app.Options) error {
	return app.New(opts).Run(ctx)
}

var connectionFlags = []string{"dbname", "host", "port", "user", "driver"}

type rootFlags struct {
	dbname, host, port, user string
	driver                   string
	profile                  string
	debug                    bool
}

// NewRootCmd builds the qsql command tree.
func NewRootCmd() *cobra.Command {
	var f rootFlags
	cmd := &cobra.Command{
		Use:   "qsql",
		Short: "qsql – interactive SQL shell",
		Long:  "qsql connects to PostgreSQL or SQLite and runs queries typed at a line-editing prompt.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options(cmd)
			if err != nil {
				return err
			}
			return runApp(cmd.Context(), opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.dbname, "dbname", "d", "", "database to connect to (a file path for SQLite)")
	fl.StringVarP(&f.host, "host", "h", "", "database server hostname")
	fl.StringVarP(&f.port, "port", "p", "", "database server port")
	fl.StringVarP(&f.user, "user", "u", "", "database user")
	fl.StringVar(&f.driver, "driver", "", "database driver: postgres or sqlite")
	fl.StringVarP(&f.profile, "profile", "P", "", "connection profile, a shortcut instead of using -d -h -p -u")
	fl.BoolVar(&f.debug, "debug", false, "write debug messages to the log file")
	for _, name := range connectionFlags {
		cmd.MarkFlagsMutuallyExclusive("profile", name)
	}

	cmd.AddCommand(newProfilesCmd(), newVersionCmd())
	return cmd
}

func (f rootFlags) options(cmd *cobra.Command) (app.Options, error) {
	switch f.driver {
	case "", profile.DriverPostgres, profile.DriverSQLite:
	default:
		return app.Options{}, fmt.Errorf("unknown driver %q (want %s or %s)", f.driver, profile.DriverPostgres, profile.DriverSQLite)
	}
	opts := app.Options{Profile: f.profile, Debug: f.debug}
	for _, name := range connectionFlags {
		if cmd.Flags().Changed(name) {
			opts.Direct = true
			break
		}
	}
	if opts.Direct {
		opts.Connection = profile.ConnectionOptions{
			Driver: f.driver,
			Host:   f.host,
			Port:   f.port,
			DBName: f.dbname,
			User:   f.user,
		}
	}
	return opts, nil
}

// Execute runs the CLI.
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		Logger.Error(err)
		os.Exit(1)
	}
}
