package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/document"
	"github.com/jonathan/resume-builder/internal/format"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render a resume document file",
	Long:  "Validates a resume document JSON file, loads it over the default document and prints its preview as text, HTML or JSON.",
	RunE:  runPreview,
}

var (
	previewInputFile  string
	previewFormat     string
	previewTheme      string
	previewOutputFile string
	previewVerbose    bool
)

func init() {
	previewCmd.Flags().StringVarP(&previewInputFile, "in", "i", "", "Path to the document JSON file, or - for stdin (required)")
	previewCmd.Flags().StringVarP(&previewFormat, "format", "f", "text", "Output format: text, html or json")
	previewCmd.Flags().StringVar(&previewTheme, "theme", types.DefaultThemeColor, "Theme color for the preview")
	previewCmd.Flags().StringVarP(&previewOutputFile, "out", "o", "", "Write to this file instead of stdout")
	previewCmd.Flags().BoolVarP(&previewVerbose, "verbose", "v", false, "Print a document overview and skill categories to stderr")

	if err := previewCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, _ []string) error {
	data, err := readInput(cmd, previewInputFile)
	if err != nil {
		return err
	}
	if err := schemas.ValidateDocumentJSON(data); err != nil {
		return fmt.Errorf("invalid document %s: %w", previewInputFile, err)
	}
	doc, err := document.Load(data, nil)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	settings := types.PresentationSettings{ThemeColor: previewTheme}
	taxonomy := format.DefaultTaxonomy()
	if previewVerbose {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		printer.PrintDocumentOverview(&doc, settings)
		printer.PrintSkillCategories(format.CategorizeSkills(doc.Skills, taxonomy))
	}

	p := rendering.BuildPreview(doc, settings, taxonomy)

	var out string
	switch strings.ToLower(previewFormat) {
	case "text":
		out = rendering.RenderText(p)
	case "html":
		out, err = rendering.RenderHTMLPage(p, doc.Title)
		if err != nil {
			return fmt.Errorf("failed to render HTML: %w", err)
		}
	case "json":
		b, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal preview: %w", err)
		}
		out = string(b) + "\n"
	default:
		return fmt.Errorf("unknown format %q: must be text, html or json", previewFormat)
	}

	return writeOutput(cmd, previewOutputFile, out)
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return data, nil
}

func writeOutput(cmd *cobra.Command, path, content string) error {
	if path == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote preview to %s\n", path)
	return nil
}
