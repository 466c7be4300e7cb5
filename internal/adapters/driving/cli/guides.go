package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var guidesJSON bool

var guidesCmd = &cobra.Command{
	Use:   "guides",
	Short: "Manage style guides",
	Long: `List the style guides in the guide directory and choose which ones the
agent may search. Hidden guides stay on disk but are left out of the index.`,
	RunE: runGuidesList,
}

var guidesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List style guides",
	Args:  cobra.NoArgs,
	RunE:  runGuidesList,
}

var guidesShowCmd = &cobra.Command{
	Use:   "show [guide-id]",
	Short: "Print a guide's normalised text",
	Args:  cobra.ExactArgs(1),
	RunE:  runGuidesShow,
}

var guidesHideCmd = &cobra.Command{
	Use:   "hide [guide-id]",
	Short: "Exclude a guide from search",
	Args:  cobra.ExactArgs(1),
	RunE:  runGuidesHide,
}

var guidesUnhideCmd = &cobra.Command{
	Use:   "unhide [guide-id]",
	Short: "Include a hidden guide in search again",
	Args:  cobra.ExactArgs(1),
	RunE:  runGuidesUnhide,
}

func init() {
	guidesListCmd.Flags().BoolVar(&guidesJSON, "json", false, "output guides as JSON")
	guidesCmd.AddCommand(guidesListCmd)
	guidesCmd.AddCommand(guidesShowCmd)
	guidesCmd.AddCommand(guidesHideCmd)
	guidesCmd.AddCommand(guidesUnhideCmd)
	rootCmd.AddCommand(guidesCmd)
}

func runGuidesList(cmd *cobra.Command, _ []string) error {
	if guideService == nil {
		return errors.New("guide service not configured")
	}

	guides, err := guideService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list guides: %w", err)
	}

	if guidesJSON {
		data, err := json.MarshalIndent(guides, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal guides: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(guides) == 0 {
		cmd.Println("No style guides found.")
		return nil
	}

	cmd.Printf("%-30s %-10s %-8s %s\n", "ID", "FORMAT", "STATUS", "TITLE")
	for _, g := range guides {
		status := "active"
		if g.Hidden {
			status = "hidden"
		}
		cmd.Printf("%-30s %-10s %-8s %s\n", g.ID, g.Format, status, g.Title)
	}
	return nil
}

func runGuidesShow(cmd *cobra.Command, args []string) error {
	if guideService == nil {
		return errors.New("guide service not configured")
	}

	guide, err := guideService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get guide: %w", err)
	}

	cmd.Println(titleStyle.Render(guide.Title))
	cmd.Println(labelStyle.Render(guide.Path))
	cmd.Println()
	cmd.Println(guide.Content)
	return nil
}

func runGuidesHide(cmd *cobra.Command, args []string) error {
	if guideService == nil {
		return errors.New("guide service not configured")
	}
	if err := guideService.Hide(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to hide guide: %w", err)
	}
	cmd.Printf("Guide %s hidden. It will be left out of the next index refresh.\n", args[0])
	return nil
}

func runGuidesUnhide(cmd *cobra.Command, args []string) error {
	if guideService == nil {
		return errors.New("guide service not configured")
	}
	if err := guideService.Unhide(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to unhide guide: %w", err)
	}
	cmd.Printf("Guide %s restored.\n", args[0])
	return nil
}
