package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/format"
	"github.com/jonathan/resume-builder/internal/types"
)

var (
	formatDateMode     string
	formatLinkFallback string
	categorizeSkills   string
)

var formatDateCmd = &cobra.Command{
	Use:   "format-date <value> [end]",
	Short: "Format a date or a date range",
	Long:  `Formats a stored date such as "2024-03" for display. With a second argument, formats the range; an empty end renders "Present".`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := format.ParseDateMode(formatDateMode)
		if err != nil {
			return err
		}
		out := format.Date(args[0], mode)
		if len(args) == 2 {
			out = format.DateRange(args[0], args[1], mode)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

var formatLinkCmd = &cobra.Command{
	Use:   "format-link <url>",
	Short: "Normalize a link and print its href and label",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		link := format.Link(args[0], formatLinkFallback)
		if link == nil {
			return fmt.Errorf("link is blank")
		}
		return printJSON(cmd, link)
	},
}

var categorizeCmd = &cobra.Command{
	Use:   "categorize",
	Short: "Group skills into display categories",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var skills []types.SkillEntry
		for _, name := range strings.Split(categorizeSkills, ",") {
			if name = strings.TrimSpace(name); name != "" {
				skills = append(skills, types.SkillEntry{Name: name})
			}
		}
		taxonomy := format.DefaultTaxonomy()
		out := cmd.OutOrStdout()
		for _, category := range format.CategorizeSkills(skills, taxonomy) {
			names := make([]string, len(category.Skills))
			for i, s := range category.Skills {
				names[i] = s.Name
			}
			fmt.Fprintf(out, "%s: %s\n", category.Name, strings.Join(names, ", "))
		}
		return nil
	},
}

func init() {
	formatDateCmd.Flags().StringVar(&formatDateMode, "mode", string(format.MonthYear), "Date mode: monthyear or year")
	formatLinkCmd.Flags().StringVar(&formatLinkFallback, "fallback", "", "Label used when the URL has no host")
	categorizeCmd.Flags().StringVarP(&categorizeSkills, "skills", "s", "", "Comma-separated skill names (required)")

	if err := categorizeCmd.MarkFlagRequired("skills"); err != nil {
		panic(fmt.Sprintf("failed to mark skills flag as required: %v", err))
	}

	rootCmd.AddCommand(formatDateCmd, formatLinkCmd, categorizeCmd)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
