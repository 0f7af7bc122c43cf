package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wolfman30/prospect-pipeline/internal/followup"
	"github.com/wolfman30/prospect-pipeline/internal/prospects"
)

func newListCmd(app *cliApp) *cobra.Command {
	var q prospects.Query
	var sortKey, dir string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List prospects with due dates and stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Sort, q.Dir = prospects.SortKey(sortKey), prospects.SortDir(dir)
			normalized, err := q.Normalize()
			if err != nil {
				return err
			}
			view, err := app.store.View(cmd.Context(), normalized)
			if err != nil {
				return fmt.Errorf("failed to list prospects: %w", err)
			}
			renderView(cmd.OutOrStdout(), view)
			return nil
		},
	}
	cmd.Flags().StringVarP(&q.Status, "status", "s", "", "filter by status (default all)")
	cmd.Flags().StringVarP(&q.Priority, "priority", "p", "", "filter by priority (default all)")
	cmd.Flags().StringVarP(&q.Search, "query", "q", "", "search name, email or phone")
	cmd.Flags().StringVar(&sortKey, "sort", "", "nextAction, lastContact, name or priority")
	cmd.Flags().StringVar(&dir, "dir", "", "asc or desc")
	return cmd
}

func newStatsCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show pipeline counts by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := app.store.View(cmd.Context(), prospects.Query{})
			if err != nil {
				return err
			}
			renderStats(cmd.OutOrStdout(), view.Stats)
			return nil
		},
	}
}

func newAddCmd(app *cliApp) *cobra.Command {
	var d prospects.Draft
	var status, priority, next, nextType string
	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a prospect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d.Name = args[0]
			d.Status = prospects.Status(status)
			d.Priority = prospects.Priority(priority)
			d.NextActionType = prospects.ActionType(nextType)
			nextAction, err := prospects.ParseDate(next)
			if err != nil {
				return err
			}
			d.NextAction = nextAction

			p, err := app.store.Add(cmd.Context(), d)
			if err != nil {
				return fmt.Errorf("failed to add prospect: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s (%s)\n", successStyle.Render("✓"), p.Name, dimStyle.Render(p.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&d.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&d.Email, "email", "", "email address")
	cmd.Flags().StringVar(&d.Relationship, "relationship", "", "how you know them")
	cmd.Flags().StringVar(&d.Source, "source", "", "where the lead came from")
	cmd.Flags().StringVar(&d.Notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&status, "status", "", "starting status (default cold)")
	cmd.Flags().StringVar(&priority, "priority", "", "high, medium or low (default medium)")
	cmd.Flags().StringVar(&next, "next", "", "next action date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&nextType, "next-type", "", "next action type")
	return cmd
}

func newContactCmd(app *cliApp) *cobra.Command {
	var contactType, note, next, nextType string
	cmd := &cobra.Command{
		Use:     "log-contact [id]",
		Aliases: []string{"contact"},
		Short:   "Log a touch with a prospect",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nextAction, err := prospects.ParseDate(next)
			if err != nil {
				return err
			}
			p, err := app.store.LogContact(cmd.Context(), args[0], prospects.ContactRequest{
				Type:           prospects.ContactType(contactType),
				Note:           note,
				NextAction:     nextAction,
				NextActionType: prospects.ActionType(nextType),
			})
			if err != nil {
				return fmt.Errorf("failed to log contact: %w", err)
			}
			line := fmt.Sprintf("Logged %s with %s", contactType, p.Name)
			if !p.NextAction.IsZero() {
				line += dimStyle.Render(fmt.Sprintf(" (next %s %s)", p.NextActionType, p.NextAction))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successStyle.Render("✓"), line)
			return nil
		},
	}
	cmd.Flags().StringVarP(&contactType, "type", "t", "", "contact type: "+joinContactTypes())
	cmd.Flags().StringVarP(&note, "note", "n", "", "what happened")
	cmd.Flags().StringVar(&next, "next", "", "next action date (YYYY-MM-DD); empty clears it")
	cmd.Flags().StringVar(&nextType, "next-type", "", "next action type")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newAdvanceCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "advance [id]",
		Short: "Move a prospect to the next stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			before, err := app.store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p, err := app.store.AdvanceStatus(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to advance %s: %w", before.Name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s → %s\n", successStyle.Render("✓"), p.Name,
				statusStyle(before.Status).Render(string(before.Status)),
				statusStyle(p.Status).Render(string(p.Status)))
			return nil
		},
	}
}

func newDeleteCmd(app *cliApp) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a prospect and its timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.store.Delete(cmd.Context(), args[0], yes); err != nil {
				if errors.Is(err, prospects.ErrDeleteNotConfirmed) {
					return fmt.Errorf("%w: rerun with --yes", err)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted %s\n", successStyle.Render("✓"), args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the delete")
	return cmd
}

func newTouchesCmd(app *cliApp) *cobra.Command {
	var day string
	var goal, days int
	cmd := &cobra.Command{
		Use:   "touches",
		Short: "Show today's touches against the daily goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := prospects.ParseDate(day)
			if err != nil {
				return err
			}
			if goal == 0 {
				goal = app.cfg.TouchGoal
			}
			report, err := app.store.Touches(cmd.Context(), d, goal, days)
			if err != nil {
				return err
			}
			renderTouches(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "day to report (default today)")
	cmd.Flags().IntVar(&goal, "goal", 0, "daily touch goal (default TOUCH_GOAL)")
	cmd.Flags().IntVar(&days, "days", 7, "days of history")
	return cmd
}

func newDigestCmd(app *cliApp) *cobra.Command {
	var to string
	var send bool
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Preview or send the follow-up digest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if to == "" {
				to = app.cfg.DigestRecipient
			}
			digest := followup.NewDigest(app.store, nil, to, app.logger).WithTouchGoal(app.cfg.TouchGoal)
			if !send {
				summary, err := digest.Build(cmd.Context())
				if err != nil {
					return err
				}
				subject, text, _ := followup.Render(summary)
				fmt.Fprintln(cmd.OutOrStdout(), headerStyle.Render(subject))
				fmt.Fprint(cmd.OutOrStdout(), text)
				return nil
			}

			sender, err := app.newSender(cmd.Context(), app.cfg, app.logger)
			if err != nil {
				return err
			}
			digest = followup.NewDigest(app.store, sender, to, app.logger).WithTouchGoal(app.cfg.TouchGoal)
			summary, sent, err := digest.Run(cmd.Context())
			if err != nil {
				return err
			}
			if !sent {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing due; no digest sent.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Sent digest to %s (%d overdue, %d due today)\n",
				successStyle.Render("✓"), to, len(summary.Overdue), len(summary.DueToday))
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "recipient (default DIGEST_RECIPIENT)")
	cmd.Flags().BoolVar(&send, "send", false, "email the digest instead of printing it")
	return cmd
}

func joinContactTypes() string {
	names := make([]string, len(prospects.ContactTypes))
	for i, ct := range prospects.ContactTypes {
		names[i] = string(ct)
	}
	return strings.Join(names, ", ")
}
