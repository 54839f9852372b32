package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the polling daemon",
	Long: `Serve schedules every active profile and polls arXiv at each profile's
frequency until interrupted. New papers are downloaded and cataloged as
they appear.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	svc, log, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if err := svc.Start(ctx); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.Info("shutting down", zap.String("signal", s.String()))

	svc.Stop()
	return nil
}
