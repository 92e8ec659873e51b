package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kobzarvs/qsql/internal/profile"
	"github.com/kobzarvs/qsql/internal/session"
)

func newProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List saved connection profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := profile.DefaultStore()
			if err != nil {
				return err
			}
			sess, err := session.NewManager()
			if err != nil {
				return err
			}
			return listProfiles(cmd, store, sess)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add",
		Short: "Create a connection profile interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := profile.DefaultStore()
			if err != nil {
				return err
			}
			name, _, err := store.Create()
			if err != nil {
				return err
			}
			Logger.Info("profile saved", "name", name, "dir", store.Dir())
			return nil
		},
	})
	return cmd
}

func listProfiles(cmd *cobra.Command, store *profile.Store, sess *session.Manager) error {
	names, err := store.List()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintln(out, "(none)")
		return nil
	}
	last := sess.LastProfile()
	for _, name := range names {
		mark := " "
		if name == last {
			mark = "*"
		}
		if st, ok := sess.ProfileState(name); ok {
			fmt.Fprintf(out, "%s %s\tlast used %s\n", mark, name, st.LastUsed.Format("2006-01-02 15:04"))
			continue
		}
		fmt.Fprintf(out, "%s %s\n", mark, name)
	}
	return nil
}
