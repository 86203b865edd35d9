package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-moto/udp"
)

var (
	// Connection flags
	host      string
	robotPort int
	filePort  int
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "motoctl",
	Short: "Robot controller command line tool",
	Long: `Motoctl talks to a robot controller over the high-speed Ethernet server
protocol.

Provides commands for reading and writing variables, inspecting the
controller status and position, transferring files, and running a register
polled RPC server for diagnostics.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&host, "host", "H", "", "Controller host or IP address")
	rootCmd.PersistentFlags().IntVar(&robotPort, "robot-port", 10040, "UDP port for robot commands")
	rootCmd.PersistentFlags().IntVar(&filePort, "file-port", 10041, "UDP port for file transfers")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 500*time.Millisecond, "Per-command timeout")

	_ = rootCmd.MarkPersistentFlagRequired("host")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// openClient connects a client using the persistent connection flags.
// The caller owns the returned client and must close it.
func openClient(ctx context.Context) (*udp.Client, error) {
	cfg, err := udp.NewClientConfig(host,
		udp.WithRobotPort(robotPort),
		udp.WithFilePort(filePort),
		udp.WithDefaultTimeout(timeout),
	)
	if err != nil {
		return nil, err
	}

	client, err := udp.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := client.Connect(); err != nil {
		return nil, err
	}

	return client, nil
}
