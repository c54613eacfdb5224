package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sadopc/timers/internal/timer"
)

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func listCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List timers",
		Args:    cobra.NoArgs,
		RunE: e.withState(func(cmd *cobra.Command, _ []string) error {
			timers := e.state.Timers()
			out := cmd.OutOrStdout()
			if len(timers) == 0 {
				fmt.Fprintln(out, "No timers.")
				return nil
			}

			now := e.state.Clock().Now()
			running := color.New(color.FgGreen, color.Bold)
			stopped := color.New(color.Faint)

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tPROJECT\tELAPSED\tSTATE")
			for _, r := range timers {
				state := stopped.Sprint("stopped")
				if r.Running() {
					state = running.Sprint("running")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", shortID(r.ID), r.Title, r.Project, r.Render(now), state)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			var total time.Duration
			for _, t := range timers.Totals(now) {
				total += t.Total
			}
			fmt.Fprintf(out, "\n%d timers, %d running, %s total\n",
				len(timers), len(timers.Running()), timer.FormatDuration(total))
			return nil
		}),
	}
}

func addCmd(e *env) *cobra.Command {
	var in timer.Input
	var start bool
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a timer",
		Args:  cobra.NoArgs,
		RunE: e.withState(func(cmd *cobra.Command, _ []string) error {
			in = in.Normalize()
			if in.Title == "" {
				return fmt.Errorf("--title must not be empty")
			}
			r, _, err := e.state.Create(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to create timer: %w", err)
			}
			if start {
				if _, err := e.state.Start(cmd.Context(), r.ID); err != nil {
					return fmt.Errorf("failed to start timer: %w", err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Created timer %s: %s\n", shortID(r.ID), r.Title)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&in.Title, "title", "t", "", "timer title (required)")
	cmd.Flags().StringVarP(&in.Project, "project", "p", "", "project name")
	cmd.Flags().BoolVar(&start, "start", false, "start the timer right away")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func editCmd(e *env) *cobra.Command {
	var title, project string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a timer's title or project",
		Args:  cobra.ExactArgs(1),
		RunE: e.withState(func(cmd *cobra.Command, args []string) error {
			r, err := e.resolve(args[0])
			if err != nil {
				return err
			}
			in := timer.Input{Title: r.Title, Project: r.Project}
			if cmd.Flags().Changed("title") {
				in.Title = title
			}
			if cmd.Flags().Changed("project") {
				in.Project = project
			}
			if _, err := e.state.Edit(cmd.Context(), r.ID, in); err != nil {
				return fmt.Errorf("failed to edit timer: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated timer %s\n", shortID(r.ID))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&project, "project", "p", "", "new project")
	cmd.MarkFlagsOneRequired("title", "project")
	return cmd
}

func rmCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a timer",
		Args:    cobra.ExactArgs(1),
		RunE: e.withState(func(cmd *cobra.Command, args []string) error {
			r, err := e.resolve(args[0])
			if err != nil {
				return err
			}
			if _, err := e.state.Delete(cmd.Context(), r.ID); err != nil {
				return fmt.Errorf("failed to delete timer: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted timer %s: %s\n", shortID(r.ID), r.Title)
			return nil
		}),
	}
}

func startCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "start <id>",
		Short: "Start a timer",
		Args:  cobra.ExactArgs(1),
		RunE: e.withState(func(cmd *cobra.Command, args []string) error {
			r, err := e.resolve(args[0])
			if err != nil {
				return err
			}
			if r.Running() {
				fmt.Fprintf(cmd.OutOrStdout(), "Timer %s is already running\n", shortID(r.ID))
				return nil
			}
			if _, err := e.state.Start(cmd.Context(), r.ID); err != nil {
				return fmt.Errorf("failed to start timer: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Started %s\n", r.Title)
			return nil
		}),
	}
}

func stopCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <id>",
		Short: "Stop a timer",
		Args:  cobra.ExactArgs(1),
		RunE: e.withState(func(cmd *cobra.Command, args []string) error {
			r, err := e.resolve(args[0])
			if err != nil {
				return err
			}
			if !r.Running() {
				fmt.Fprintf(cmd.OutOrStdout(), "Timer %s is not running\n", shortID(r.ID))
				return nil
			}
			c, err := e.state.Stop(cmd.Context(), r.ID)
			if err != nil {
				return fmt.Errorf("failed to stop timer: %w", err)
			}
			stopped, _ := c.Find(r.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Stopped %s at %s\n", r.Title, stopped.Render(e.state.Clock().Now()))
			return nil
		}),
	}
}
