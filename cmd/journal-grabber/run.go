package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <profile-id>",
	Short: "Run one profile immediately",
	Long: `Run executes a profile's search and download cycle right away, outside
its schedule. Works on paused profiles too.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	svc, _, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	n, err := svc.RunProfileNow(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Run complete: %d new paper(s)\n", n)
	return nil
}
