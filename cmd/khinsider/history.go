package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/khinsider-go/internal/domain"
	"github.com/yourusername/khinsider-go/internal/infrastructure"
	"github.com/yourusername/khinsider-go/pkg/format"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded download sessions, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openHistory(opts)
			if err != nil {
				return err
			}
			defer repo.Close()

			sessions, err := repo.FindAll(limit)
			if err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}

			printSessions(cmd.OutOrStdout(), sessions)
			return nil
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of sessions to show (0 for all)")

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a session and its downloaded items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openHistory(opts)
			if err != nil {
				return err
			}
			defer repo.Close()

			session, err := repo.FindByID(args[0])
			if err != nil {
				return fmt.Errorf("failed to get session: %w", err)
			}
			if session == nil {
				return fmt.Errorf("session not found: %s", args[0])
			}

			items, err := repo.FindItems(session.ID)
			if err != nil {
				return fmt.Errorf("failed to get session items: %w", err)
			}

			printSession(cmd.OutOrStdout(), session, items)
			return nil
		},
	}
	historyCmd.AddCommand(showCmd)

	return historyCmd
}

func openHistory(opts *options) (*infrastructure.SQLiteSessionRepository, error) {
	config, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}
	if !config.History.Enabled {
		return nil, fmt.Errorf("session history is disabled")
	}
	return infrastructure.NewSQLiteSessionRepository(config.History.DatabasePath)
}

func printSessions(out io.Writer, sessions []*domain.Session) {
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions recorded")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOLLECTION\tSTATUS\tITEMS\tSIZE\tSTARTED")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			truncate(s.ID, 8),
			truncate(s.Collection, 40),
			s.Status,
			s.ItemCount,
			s.TotalItems,
			format.Bytes(s.Bytes),
			format.Date(s.StartedAt))
	}
	w.Flush()
}

func printSession(out io.Writer, session *domain.Session, items []*domain.SessionItem) {
	fmt.Fprintf(out, "Session Details:\n")
	fmt.Fprintf(out, "  ID:         %s\n", session.ID)
	fmt.Fprintf(out, "  Collection: %s\n", session.Collection)
	fmt.Fprintf(out, "  URL:        %s\n", session.CatalogURL)
	fmt.Fprintf(out, "  Directory:  %s\n", session.DownloadDir)
	fmt.Fprintf(out, "  Status:     %s\n", session.Status)
	fmt.Fprintf(out, "  Items:      %d/%d\n", session.ItemCount, session.TotalItems)
	fmt.Fprintf(out, "  Size:       %s\n", format.Bytes(session.Bytes))
	fmt.Fprintf(out, "  Started:    %s\n", format.Date(session.StartedAt))
	if session.FinishedAt != nil {
		fmt.Fprintf(out, "  Finished:   %s\n", format.Date(*session.FinishedAt))
		if elapsed := format.Duration(session.FinishedAt.Sub(session.StartedAt)); elapsed != "" {
			fmt.Fprintf(out, "  Duration:   %s\n", elapsed)
		}
	}
	if session.ErrorMessage != "" {
		fmt.Fprintf(out, "  Error:      %s\n", session.ErrorMessage)
	}

	if len(items) == 0 {
		return
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tFILE\tSIZE")
	for _, item := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\n", item.Position, item.FilePath, format.Bytes(item.Bytes))
	}
	w.Flush()
}

// truncate shortens s to maxLen characters, counting runes so multi-byte titles stay valid UTF-8
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
