package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-moto/rpcserver"
)

var (
	serveBaseRegister uint16
	serveDelay        time.Duration
	serveServices     []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a register polled RPC server for diagnostics",
	Long: `Run an RPC server that polls the status registers starting at the base
register and logs every request it dispatches.

Each --service flag registers one service, in register order. A service
whose name starts with '-' is registered as disabled: requests for it fail
with an error status. All other services log the request and succeed.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Uint16Var(&serveBaseRegister, "base-register", 0, "First status register index")
	serveCmd.Flags().DurationVar(&serveDelay, "delay", 200*time.Millisecond, "Poll interval")
	serveCmd.Flags().StringSliceVar(&serveServices, "service", nil, "Service name, repeatable, in register order")

	_ = serveCmd.MarkFlagRequired("service")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	client, err := openClient(cmd.Context())
	if err != nil {
		return err
	}
	defer client.Close()

	server, err := rpcserver.NewServer(cmd.Context(), client, serveBaseRegister, serveDelay,
		rpcserver.WithErrorSink(func(err error) {
			fmt.Fprintf(os.Stderr, "rpc error: %v\n", err)
		}),
	)
	if err != nil {
		return err
	}

	for i, name := range serveServices {
		register := serveBaseRegister + uint16(i)

		if disabled := strings.TrimPrefix(name, "-"); disabled != name {
			if err := server.AddService(disabled, rpcserver.DisabledService); err != nil {
				return err
			}
			fmt.Printf("register %d: %s (disabled)\n", register, disabled)

			continue
		}

		if err := server.AddService(name, func(results []any, resolve func(error)) {
			fmt.Printf("service %s requested\n", name)
			resolve(nil)
		}); err != nil {
			return err
		}
		fmt.Printf("register %d: %s\n", register, name)
	}

	server.Start()
	defer server.Stop()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals

	return nil
}
