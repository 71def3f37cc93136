package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/benjaminschreck/docxmerge/pkg/docxmerge"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRenderCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "render <template.docx> <data.yaml|data.json|->",
		Short: "Render a template with data",
		Long: `Render a template with the top-level mapping of a YAML or JSON file.
Keys are resolved in file order. Use - to read the data from stdin.

Example:
  docxmerge render invoice.docx invoice.yaml -o out.docx`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			templatePath, dataPath := args[0], args[1]

			raw, err := readData(cmd.InOrStdin(), dataPath)
			if err != nil {
				return err
			}
			data, err := docxmerge.DataFromYAML(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", dataPath, err)
			}

			ctx := cmd.Context()
			if a.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, a.timeout)
				defer cancel()
			}

			out, err := a.engine.Render(ctx, templatePath, data)
			if err != nil {
				return err
			}

			if output == "" {
				output = defaultOutput(templatePath)
			}
			if output == "-" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			a.logger.Info("rendered template",
				zap.String("template", templatePath),
				zap.String("output", output),
				zap.Int("fields", len(data)),
				zap.Int("bytes", len(out)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout (default <template>-rendered.docx)")
	return cmd
}

func readData(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return raw, nil
}

func defaultOutput(templatePath string) string {
	ext := filepath.Ext(templatePath)
	return strings.TrimSuffix(templatePath, ext) + "-rendered" + ext
}

func newPlaceholdersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "placeholders <template.docx>",
		Short: "List the placeholders a template uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := docxmerge.OpenTemplate(args[0])
			if err != nil {
				return err
			}
			defer tmpl.Close()

			for _, name := range tmpl.Placeholders() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
