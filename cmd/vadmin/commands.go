package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kingrea/vadmin/internal/admin"
	"github.com/kingrea/vadmin/internal/config"
	"github.com/kingrea/vadmin/internal/tui"
	"github.com/kingrea/vadmin/internal/versionapi"
)

func newTUICmd() *cobra.Command {
	var open string
	cmd := &cobra.Command{
		Use:   "tui <version-id>",
		Short: "Open the interactive admin widget for a version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opt := admin.OptionNone
			if open != "" {
				parsed, err := admin.ParseOption(open)
				if err != nil {
					return err
				}
				opt = parsed
			}
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()
			sess.logbook.Info("Session opened · version %s · %s", args[0], sess.client.BaseURL())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			app := tui.NewApp(sess.dispatcher(args[0]),
				tui.WithLogbook(sess.logbook),
				tui.WithConfirmOnEnter(sess.cfg.ConfirmWithEnter()),
				tui.WithContext(ctx),
				tui.WithOpenDialog(opt),
			)
			p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running TUI: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&open, "open", "", "open a dialog on start: schedule, unschedule or priority")
	return cmd
}

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <version-id>",
		Short: "Activate every task of a version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, args[0], func(ctx context.Context, d *admin.Dispatcher) (*admin.Outcome, error) {
				return d.UpdateScheduled(ctx, true)
			})
		},
	}
}

func newUnscheduleCmd() *cobra.Command {
	var abort bool
	cmd := &cobra.Command{
		Use:   "unschedule <version-id>",
		Short: "Deactivate every task of a version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, args[0], func(ctx context.Context, d *admin.Dispatcher) (*admin.Outcome, error) {
				d.Vals.Abort = abort
				return d.UpdateScheduled(ctx, false)
			})
		},
	}
	cmd.Flags().BoolVar(&abort, "abort", false, "abort tasks that have already started")
	return cmd
}

func newPriorityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "priority <version-id> [--] <priority>",
		Short: "Set the scheduling priority of a version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, args[0], func(ctx context.Context, d *admin.Dispatcher) (*admin.Outcome, error) {
				d.Vals.Priority = args[1]
				return d.UpdatePriority(ctx)
			})
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <version-id>",
		Short: "Print the current state of a version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()
			v, err := sess.dispatcher(args[0]).Refresh(cmd.Context())
			if err != nil {
				return err
			}
			printVersion(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the vadmin config file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default config file if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Init(configFile)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})
	return cmd
}

type actionFunc func(context.Context, *admin.Dispatcher) (*admin.Outcome, error)

func runAction(cmd *cobra.Command, versionID string, act actionFunc) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()
	out, err := act(cmd.Context(), sess.dispatcher(versionID))
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s applied to %s\n", out.Action, versionID)
	if out.RefreshErr != nil {
		fmt.Fprintf(w, "warning: could not re-fetch version: %s\n", admin.UserMessage(out.RefreshErr))
		return nil
	}
	printVersion(w, out.Version)
	return nil
}

func printVersion(w io.Writer, v *versionapi.Version) {
	if v == nil {
		return
	}
	state := "inactive"
	if v.Activated {
		state = "active"
	}
	fmt.Fprintf(w, "[%s] %s", v.ID, state)
	fmt.Fprintf(w, " · priority %d", v.Priority)
	if v.Status != "" {
		fmt.Fprintf(w, " · %s", v.Status)
	}
	if v.Project != "" {
		fmt.Fprintf(w, " · %s", v.Project)
	}
	if v.Revision != "" {
		fmt.Fprintf(w, "@%s", v.Revision)
	}
	fmt.Fprintln(w)
}
