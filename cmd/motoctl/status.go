package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the controller status flags",
	RunE:  runStatus,
}

var positionCmd = &cobra.Command{
	Use:   "position",
	Short: "Show the current position of a control group",
	RunE:  runPosition,
}

var controlGroup uint16

func init() {
	positionCmd.Flags().Uint16VarP(&controlGroup, "group", "g", 1, "Control group (1-based)")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(positionCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := openClient(cmd.Context())
	if err != nil {
		return err
	}
	defer client.Close()

	status, err := client.ReadStatus(timeout)
	if err != nil {
		return err
	}

	flag := func(name string, set bool) {
		mark := " "
		if set {
			mark = "x"
		}
		fmt.Printf("[%s] %s\n", mark, name)
	}

	flag("step", status.Step)
	flag("one cycle", status.OneCycle)
	flag("continuous run", status.ContinuousRun)
	flag("running", status.Running)
	flag("speed limited", status.SpeedLimited)
	flag("teach", status.Teach)
	flag("play", status.Play)
	flag("remote", status.Remote)
	flag("pendant hold", status.PendantHold)
	flag("external hold", status.ExternalHold)
	flag("command hold", status.CommandHold)
	flag("alarm", status.Alarm)
	flag("error", status.Error)
	flag("servo on", status.ServoOn)

	return nil
}

func runPosition(cmd *cobra.Command, args []string) error {
	client, err := openClient(cmd.Context())
	if err != nil {
		return err
	}
	defer client.Close()

	position, err := client.ReadCurrentPosition(controlGroup, timeout)
	if err != nil {
		return err
	}

	return printYAML(position)
}
