package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iksnae/adk-chat/internal"
	"github.com/iksnae/adk-chat/internal/export"
	"github.com/spf13/cobra"
)

var (
	format        string
	outputDir     string
	exportOffline bool
	clearCache    bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a session to a file",
	Long: `Export a conversation to jsonl, md, yaml or json.

Without --output the export is written to stdout. Use 'adk-chat list' to see
available session IDs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		transcript, err := loadTranscript(cmd.Context(), id, exportOffline, clearCache)
		if err != nil {
			return err
		}

		if outputDir == "" {
			if err := exporter.Export(transcript, cmd.OutOrStdout()); err != nil {
				return &internal.ExportError{Format: format, Path: "stdout", Err: err}
			}
			return nil
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		path := filepath.Join(outputDir, exportFileName(id, exporter.Extension()))
		if err := writeExport(exporter, transcript, path); err != nil {
			return &internal.ExportError{Format: format, Path: path, Err: err}
		}

		internal.PrintSuccess(fmt.Sprintf("Exported %d message(s) to %s", len(transcript.Messages), path))
		return nil
	},
}

func writeExport(exporter export.Exporter, transcript *internal.Transcript, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := exporter.Export(transcript, f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// exportFileName builds a file name from a session id that is safe on disk
func exportFileName(id, ext string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
	return fmt.Sprintf("session_%s.%s", safe, ext)
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default stdout)")
	exportCmd.Flags().BoolVar(&exportOffline, "offline", false, "Export the cached conversation without contacting the backend")
	exportCmd.Flags().BoolVar(&clearCache, "clear-cache", false, "Clear the cache before fetching")
}
