package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/tides/internal/lastfm"
	"github.com/llehouerou/tides/internal/state"
	"github.com/llehouerou/tides/internal/taste"
	"github.com/llehouerou/tides/internal/ui/playerbar"
)

var historyLimit int

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Print the saved queue",
	Args:  cobra.NoArgs,
	RunE:  runQueue,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print recently played tracks",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var tasteCmd = &cobra.Command{
	Use:   "taste",
	Short: "Print the taste profile built from listening history",
	Args:  cobra.NoArgs,
	RunE:  runTaste,
}

var lastfmCmd = &cobra.Command{
	Use:   "lastfm",
	Short: "Manage Last.fm scrobbling",
}

var lastfmLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Link a Last.fm account",
	Long: `Open the Last.fm authorization page and wait for the callback.
The session key is saved in the database; api_key and api_secret must be set in config.toml.`,
	Args: cobra.NoArgs,
	RunE: runLastfmLogin,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of plays to show")

	lastfmCmd.AddCommand(lastfmLoginCmd)
	rootCmd.AddCommand(queueCmd, historyCmd, tasteCmd, lastfmCmd)
}

func withStore(fn func(*state.Manager) error) error {
	store, err := state.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...)
}

func runQueue(cmd *cobra.Command, _ []string) error {
	return withStore(func(store *state.Manager) error {
		q := state.LoadQueue(store)
		if len(q.Tracks) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty.")
			return nil
		}

		t := newTable("", "#", "Title", "Artist", "Length")
		var total time.Duration
		for i, tr := range q.Tracks {
			marker := ""
			if i == q.Index {
				marker = "▶"
			}
			length := time.Duration(tr.Duration) * time.Second
			total += length
			t.Row(marker, strconv.Itoa(i+1), tr.Name, tr.ArtistName, playerbar.FormatDuration(length))
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.String())
		fmt.Fprintf(cmd.OutOrStdout(), "%s tracks, %s\n", humanize.Comma(int64(len(q.Tracks))), playerbar.FormatDuration(total))
		return nil
	})
}

func runHistory(cmd *cobra.Command, _ []string) error {
	return withStore(func(store *state.Manager) error {
		plays, err := store.RecentPlays(historyLimit)
		if err != nil {
			return err
		}
		if len(plays) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing played yet.")
			return nil
		}

		t := newTable("When", "Title", "Artist", "Played", "")
		for _, p := range plays {
			skipped := ""
			if p.Skipped {
				skipped = "skipped"
			}
			t.Row(humanize.Time(p.PlayedAt), p.Name, p.ArtistName, playerbar.FormatDuration(p.DurationPlayed), skipped)
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.String())
		return nil
	})
}

func runTaste(cmd *cobra.Command, _ []string) error {
	return withStore(func(store *state.Manager) error {
		p := taste.Load(store)
		if len(p.Tracks) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No taste profile yet. Listen to a few tracks first.")
			return nil
		}

		var plays, skips int
		for _, e := range p.Tracks {
			plays += e.PlayCount
			skips += e.SkipCount
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s tracks, %s plays, %s skips, updated %s\n\n",
			humanize.Comma(int64(len(p.Tracks))), humanize.Comma(int64(plays)),
			humanize.Comma(int64(skips)), humanize.Time(p.UpdatedAt))

		artists := newTable("Artist", "Score")
		for _, r := range p.TopArtists {
			artists.Row(r.Name, humanize.FtoaWithDigits(r.Score, 2))
		}
		keywords := newTable("Keyword", "Score")
		for _, r := range p.TopKeywords {
			keywords.Row(r.Name, humanize.FtoaWithDigits(r.Score, 2))
		}
		fmt.Fprintln(cmd.OutOrStdout(), lipgloss.JoinHorizontal(lipgloss.Top, artists.String(), "  ", keywords.String()))
		return nil
	})
}

func runLastfmLogin(cmd *cobra.Command, _ []string) error {
	if !cfg.HasLastfmConfig() {
		return errors.New("set [lastfm] api_key and api_secret in config.toml first")
	}
	client := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)

	srv, err := lastfm.StartAuthServer("")
	if err != nil {
		return err
	}
	defer srv.Shutdown()

	token, err := client.GetToken()
	if err != nil {
		return err
	}
	url := client.GetAuthURL(token, srv.CallbackURL())
	if err := lastfm.OpenBrowser(url); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Open this URL to authorize tides:\n  %s\n", url)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Waiting for authorization...")

	if _, err := srv.WaitForToken(cmd.Context(), 5*time.Minute); err != nil {
		return err
	}
	username, sessionKey, err := client.GetSession(token)
	if err != nil {
		return err
	}

	if err := withStore(func(store *state.Manager) error {
		return state.SaveLastfmSession(store, sessionKey)
	}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Linked Last.fm account %s.\n", username)
	return nil
}
