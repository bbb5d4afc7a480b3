package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color" //nolint:misspell
	"github.com/spf13/cobra"

	"github.com/go-arrower/queueboard"
	dashboard "github.com/go-arrower/queueboard/contexts/dashboard/init"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(osSignal <-chan os.Signal) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard",
		Long: `Serve the dashboard of all configured queues.
The configuration is read from the file given by --config and QUEUEBOARD_ environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			blue := color.New(color.FgBlue, color.Bold).FprintfFunc()
			ctx := cmd.Context()

			conf, err := loadConfig(configFile)
			if err != nil {
				return err
			}

			di, err := queueboard.InitialiseDefaultDependencies(ctx, conf)
			if err != nil {
				return fmt.Errorf("could not initialise dependencies: %w", err)
			}

			dashboardContext, err := dashboard.NewDashboardContext(ctx, di)
			if err != nil {
				return fmt.Errorf("could not initialise dashboard: %w", err)
			}

			if err := di.Start(ctx); err != nil {
				return fmt.Errorf("could not start: %w", err)
			}

			blue(cmd.OutOrStdout(), "serving %d queue(s) at http://localhost:%d%s/\n",
				len(conf.Queues), conf.HTTP.Port, conf.HTTP.BasePath)

			<-osSignal

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			err = errors.Join(
				dashboardContext.Shutdown(ctx),
				di.Shutdown(ctx),
			)
			if err != nil {
				return fmt.Errorf("could not shutdown gracefully: %w", err)
			}

			blue(cmd.OutOrStdout(), "done\n")

			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "path to the configuration file")

	return cmd
}

// loadConfig reads the configuration from file, if given, and the environment.
// Without any queue configured, a single in-memory demo queue is served.
func loadConfig(file string) (*queueboard.Config, error) {
	vip := queueboard.DefaultViper()

	if file != "" {
		vip.SetConfigFile(file)

		if err := vip.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read configuration: %w", err)
		}
	}

	conf := &queueboard.Config{}
	if err := vip.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if len(conf.Queues) == 0 {
		conf.Queues = []queueboard.QueueConfig{{Name: "demo", Driver: queueboard.MemoryDriver}}
	}

	return conf, nil
}
