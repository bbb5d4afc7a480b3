package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color" //nolint:misspell
	"github.com/spf13/cobra"

	"github.com/go-arrower/queueboard/alog"
	"github.com/go-arrower/queueboard/client"
)

// clearScreen moves the cursor to the top left and clears the terminal.
const clearScreen = "\033[H\033[2J"

func newWatchCmd(osSignal <-chan os.Signal) *cobra.Command {
	var (
		configFile string
		url        string
		interval   time.Duration
		statuses   map[string]string
		page       int
		once       bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a running dashboard from the terminal",
		Long: `Poll a running queueboard server and render the queues in the terminal.
Select the jobs to list per queue with --status, e.g. --status emails=failed,images=latest.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConfig(configFile)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("url") {
				url = conf.Watch.URL
			}

			if !cmd.Flags().Changed("interval") {
				interval = conf.Watch.Interval
			}

			if page < 1 {
				return fmt.Errorf("invalid page %d: pages start at 1", page) //nolint:err113 // user input
			}

			pagination := client.Pagination{Start: (page - 1) * client.PageSize, End: page*client.PageSize - 1}
			out := cmd.OutOrStdout()

			logger := alog.New(
				alog.WithHandler(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelInfo})),
			)

			store := client.NewStore(url,
				client.WithInterval(interval),
				client.WithLogger(logger),
				client.WithOnChange(func(state client.State) {
					if !once {
						fmt.Fprint(out, clearScreen)
					}

					renderDashboard(out, state, statuses, pagination)
				}),
			)

			// the store is not running yet, setting its values does not poll
			store.SetSelectedStatuses(cmd.Context(), statuses)
			store.SetPagination(cmd.Context(), pagination)

			if once {
				if err := store.Poll(cmd.Context()); err != nil {
					return fmt.Errorf("could not watch %s: %w", url, err)
				}

				return nil
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			store.Start(ctx)

			if store.State().Loading {
				color.New(color.FgYellow).Fprintf(out, "waiting for %s\n", url) //nolint:errcheck
			}

			<-osSignal
			store.Stop()

			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "path to the configuration file")
	cmd.Flags().StringVar(&url, "url", "", "url of the dashboard, including its base path")
	cmd.Flags().DurationVar(&interval, "interval", client.DefaultInterval, "time between two polls")
	cmd.Flags().StringToStringVarP(&statuses, "status", "s", map[string]string{}, "status of the jobs to list per queue")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page of the listed jobs")
	cmd.Flags().BoolVar(&once, "once", false, "poll once and exit")

	return cmd
}
