package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rpggio/confsched/internal/cfgtemplate"
	"github.com/rpggio/confsched/internal/domain/activity"
)

// cliUser is recorded on audit entries written from the command line.
const cliUser = "cli"

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Synchronize task records with the config directories once",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(openOptions{logOut: cmd.ErrOrStderr()})
		if err != nil {
			return err
		}
		defer a.close()

		res, err := a.tasks.Reconcile(activity.WithUser(cmd.Context(), cliUser))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "removed: %s\n", joinOrNone(res.Removed))
		fmt.Fprintf(out, "added: %s\n", joinOrNone(res.Added))
		return nil
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a backup of the task store next to it",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(openOptions{logOut: cmd.ErrOrStderr()})
		if err != nil {
			return err
		}
		defer a.close()

		path, err := a.backups.Snapshot(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var (
	templateName   string
	templateURL    string
	templateTags   string
	templateRepost bool
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Create a recording config DMR-<name>.yml in the enabled directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(openOptions{logOut: cmd.ErrOrStderr()})
		if err != nil {
			return err
		}
		defer a.close()

		path, err := a.templates.Generate(activity.WithUser(cmd.Context(), cliUser), cfgtemplate.Request{
			TaskName: templateName,
			URL:      templateURL,
			Tags:     templateTags,
			Repost:   templateRepost,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	templateCmd.Flags().StringVar(&templateName, "name", "", "task name")
	templateCmd.Flags().StringVar(&templateURL, "url", "", "live stream URL")
	templateCmd.Flags().StringVar(&templateTags, "tags", "", "comma separated upload tags")
	templateCmd.Flags().BoolVar(&templateRepost, "repost", false, "mark uploads as reposts")
	_ = templateCmd.MarkFlagRequired("name")
	_ = templateCmd.MarkFlagRequired("url")
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
