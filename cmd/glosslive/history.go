package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/ZaguanLabs/glosslive/history"
	"github.com/spf13/cobra"
)

func (c *cli) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and edit saved sessions",
	}
	cmd.AddCommand(
		c.historyListCommand(),
		c.historySearchCommand(),
		c.historyExportCommand(),
		c.historyStarCommand(),
		c.historyDeleteCommand(),
	)
	return cmd
}

func (c *cli) historyListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			sessions := a.store.Sessions()
			if len(sessions) == 0 {
				fmt.Fprintln(c.stdout, "no saved sessions")
				return nil
			}
			for _, s := range sessions {
				fmt.Fprintf(c.stdout, "#%-4d %s  %-2s  %d items\n",
					s.ID, s.Timestamp.Local().Format("1/2 15:04"), s.Language, len(s.Items))
			}
			return nil
		},
	}
}

func (c *cli) historySearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search source and translated text across all sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			matches := a.store.Search(args[0])
			if len(matches) == 0 {
				fmt.Fprintln(c.stdout, "no matches")
				return nil
			}
			for _, m := range matches {
				star := ""
				if m.Starred {
					star = "⭐ "
				}
				fmt.Fprintf(c.stdout, "%s#%d/%d [%s] %s → %s\n",
					star, m.SessionID, m.ID, m.Timestamp.Local().Format(history.TimeLayout), m.SourceText, m.TargetText)
			}
			return nil
		},
	}
}

func (c *cli) historyExportCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Export a saved session as text or HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("session", args[0])
			if err != nil {
				return err
			}

			a, err := c.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			session, err := a.store.Session(id)
			if err != nil {
				return err
			}

			var w io.Writer = c.stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating output file: %w", err)
				}
				defer f.Close()
				w = f
			}

			switch format {
			case "text":
				return history.WriteText(w, session.Items, time.Local)
			case "html":
				return history.WriteHTML(w, session, time.Local)
			default:
				return fmt.Errorf("unknown format %q (want text or html)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "export format: text or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func (c *cli) historyStarCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "star <session-id> <item-id>",
		Short: "Toggle the star on a history item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sid, err := parseID("session", args[0])
			if err != nil {
				return err
			}
			id, err := parseID("item", args[1])
			if err != nil {
				return err
			}

			a, err := c.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			item, err := a.store.ToggleStar(cmd.Context(), id, sid)
			if err != nil {
				return err
			}
			state := "unstarred"
			if item.Starred {
				state = "starred"
			}
			fmt.Fprintf(c.stdout, "#%d/%d %s\n", sid, id, state)
			return nil
		},
	}
}

func (c *cli) historyDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id> [item-id]",
		Short: "Delete a saved session, or one item from it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sid, err := parseID("session", args[0])
			if err != nil {
				return err
			}

			a, err := c.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if len(args) == 1 {
				if err := a.store.DeleteSession(cmd.Context(), sid); err != nil {
					return err
				}
				fmt.Fprintf(c.stdout, "deleted session #%d\n", sid)
				return nil
			}

			id, err := parseID("item", args[1])
			if err != nil {
				return err
			}
			if err := a.store.DeleteItem(cmd.Context(), id, sid); err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "deleted #%d/%d\n", sid, id)
			return nil
		},
	}
}

func parseID(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s id must be a positive number, got %q", name, s)
	}
	return n, nil
}
