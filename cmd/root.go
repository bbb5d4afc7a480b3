package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queueboard",
		Short: "queueboard is a dashboard to monitor and manage job queues stored in redis.",
		Long: `Serve the web dashboard of your queues with 'queueboard serve'
or watch a running dashboard from the terminal with 'queueboard watch'.`,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}
}

// NewQueueboardCLI initialises the complete cli with its commands and returns the root command.
// The long-running commands stop once osSignal receives.
func NewQueueboardCLI(osSignal <-chan os.Signal) *cobra.Command {
	rootCmd := newRootCmd()
	rootCmd.AddCommand(Version("queueboard"))
	rootCmd.AddCommand(newServeCmd(osSignal))
	rootCmd.AddCommand(newWatchCmd(osSignal))

	return rootCmd
}

// Execute runs the queueboard cli.
func Execute() {
	if err := NewQueueboardCLI(NewInterruptSignalChannel()).Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

// NewInterruptSignalChannel returns a channel listening for the os.Signals the cli shuts down on.
func NewInterruptSignalChannel() chan os.Signal {
	signalsToListenTo := []os.Signal{
		syscall.SIGINT,                   // Strg + c
		syscall.SIGTERM, syscall.SIGQUIT, // terminate but finish/cleanup first, e.g. kill
		os.Interrupt,
	}

	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, signalsToListenTo...)

	return osSignal
}
