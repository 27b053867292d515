package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStateCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect the last saved camera state",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the last saved camera state as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(flags, func(e *env) error {
				st, ok := e.prefs.LoadState()
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "No camera state saved")
					return nil
				}
				return printJSON(cmd.OutOrStdout(), st)
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget the last saved camera state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(flags, func(e *env) error {
				if err := e.prefs.ClearState(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Cleared camera state")
				return nil
			})
		},
	}

	cmd.AddCommand(showCmd, clearCmd)
	return cmd
}
