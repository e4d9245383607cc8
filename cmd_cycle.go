package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"gitlab.com/tinyland/lab/raven/pkg/daemon"
)

// cyclePIDFile holds the pid of the running ravend, inside the base dir.
const cyclePIDFile = "ravend.pid"

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Control ravend, the theme cycling daemon",
}

var cycleStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start ravend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		pid, err := newCycle().Start(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Started cycle daemon (pid %d).\n", pid)
		return nil
	},
}

var cycleStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop ravend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := newCycle().Stop(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Stopped cycle daemon.")
		return nil
	},
}

var cycleCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether ravend is running",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		running, err := newCycle().Running(cmd.Context())
		if err != nil {
			return err
		}
		if running {
			fmt.Fprintln(cmd.OutOrStdout(), "Cycle daemon is running.")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Cycle daemon is not running.")
		}
		return nil
	},
}

func init() {
	cycleCmd.AddCommand(cycleStartCmd, cycleStopCmd, cycleCheckCmd)
	rootCmd.AddCommand(cycleCmd)
}

func newCycle() *daemon.Cycle {
	return daemon.NewCycle(filepath.Join(env.layout.Base, cyclePIDFile),
		daemon.NewProcessTable(env.logger), env.logger)
}
