package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/journal-grabber/pkg/types"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage search profiles",
	Long: `Profile manages the saved searches the daemon polls. Each profile pairs
topics (arXiv category codes and free-text keywords) with a polling
frequency and a download directory.`,
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a new profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileAdd,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	RunE:  runProfileList,
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update <profile-id>",
	Short: "Modify a profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileUpdate,
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <profile-id>",
	Short: "Remove a profile",
	Long: `Delete removes a profile and cancels its schedule. Cataloged papers and
downloaded files are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileDelete,
}

func init() {
	profileAddCmd.Flags().String("topics", "", "comma-separated topics (required)")
	profileAddCmd.Flags().Int("frequency", 24, "polling frequency in hours")
	profileAddCmd.Flags().String("download-dir", "", "download directory (default from config)")
	profileAddCmd.Flags().Bool("paused", false, "create the profile without scheduling it")

	profileUpdateCmd.Flags().String("name", "", "new profile name")
	profileUpdateCmd.Flags().String("topics", "", "comma-separated topics")
	profileUpdateCmd.Flags().Int("frequency", 0, "polling frequency in hours")
	profileUpdateCmd.Flags().String("download-dir", "", "download directory")
	profileUpdateCmd.Flags().Bool("active", false, "schedule the profile")
	profileUpdateCmd.Flags().Bool("paused", false, "unschedule the profile")

	profileCmd.AddCommand(profileAddCmd, profileListCmd, profileUpdateCmd, profileDeleteCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileAdd(cmd *cobra.Command, args []string) error {
	svc, _, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	topicsFlag, _ := cmd.Flags().GetString("topics")
	frequency, _ := cmd.Flags().GetInt("frequency")
	downloadDir, _ := cmd.Flags().GetString("download-dir")
	paused, _ := cmd.Flags().GetBool("paused")

	active := !paused
	spec := types.ProfileSpec{
		Name:           args[0],
		Topics:         splitTopics(topicsFlag),
		FrequencyHours: frequency,
		DownloadPath:   downloadDir,
		IsActive:       &active,
	}

	p, err := svc.CreateProfile(cmd.Context(), spec)
	if err != nil {
		return err
	}
	fmt.Printf("Created profile %s (%s), polling every %dh\n", p.Name, p.ID, p.FrequencyHours)
	return nil
}

func runProfileList(cmd *cobra.Command, args []string) error {
	svc, _, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	profiles, err := svc.ListProfiles(cmd.Context())
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		fmt.Println("No profiles.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTOPICS\tFREQ\tACTIVE\tLAST RUN")
	for _, p := range profiles {
		lastRun := "never"
		if p.LastRun != nil {
			lastRun = p.LastRun.Local().Format(time.DateTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%dh\t%t\t%s\n",
			p.ID, p.Name, strings.Join(p.Topics, ","), p.FrequencyHours, p.IsActive, lastRun)
	}
	return w.Flush()
}

func runProfileUpdate(cmd *cobra.Command, args []string) error {
	svc, _, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	var upd types.ProfileUpdate
	if cmd.Flags().Changed("name") {
		name, _ := cmd.Flags().GetString("name")
		upd.Name = &name
	}
	if cmd.Flags().Changed("topics") {
		topicsFlag, _ := cmd.Flags().GetString("topics")
		topics := splitTopics(topicsFlag)
		upd.Topics = &topics
	}
	if cmd.Flags().Changed("frequency") {
		frequency, _ := cmd.Flags().GetInt("frequency")
		upd.FrequencyHours = &frequency
	}
	if cmd.Flags().Changed("download-dir") {
		dir, _ := cmd.Flags().GetString("download-dir")
		upd.DownloadPath = &dir
	}
	if cmd.Flags().Changed("active") {
		active := true
		upd.IsActive = &active
	}
	if cmd.Flags().Changed("paused") {
		active := false
		upd.IsActive = &active
	}

	p, err := svc.UpdateProfile(cmd.Context(), args[0], upd)
	if err != nil {
		return err
	}
	fmt.Printf("Updated profile %s (%s)\n", p.Name, p.ID)
	return nil
}

func runProfileDelete(cmd *cobra.Command, args []string) error {
	svc, _, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.DeleteProfile(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted profile %s\n", args[0])
	return nil
}

func splitTopics(s string) []string {
	var topics []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	return topics
}
