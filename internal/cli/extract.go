package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/resume-extractor/constants"
	"github.com/joseph-ayodele/resume-extractor/internal/common"
	"github.com/joseph-ayodele/resume-extractor/internal/entity"
	"github.com/joseph-ayodele/resume-extractor/internal/export"
	"github.com/joseph-ayodele/resume-extractor/internal/pipeline"
	"github.com/joseph-ayodele/resume-extractor/internal/source"
)

const (
	formatXLSX = "xlsx"
	formatCSV  = "csv"
	formatJSON = "json"
)

var (
	extractOut    string
	extractFormat string
)

var extractCmd = &cobra.Command{
	Use:   "extract <path|s3://bucket/key>",
	Short: "Extract candidate records from a resume or a ZIP of resumes",
	Long: `Extract candidate records from a PDF or DOCX resume, or from every PDF and
DOCX inside a ZIP bundle, and export them.

Documents that fail are listed in the summary and in the Failures sheet of
an XLSX export. The command exits non-zero only when the whole run fails.

Examples:
  resume-batch extract ./candidates.zip
  resume-batch extract ./cv.pdf --format json
  resume-batch extract s3://hiring/batch-07.zip --out s3://hiring/exports/batch-07.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "output file or s3:// URI (json defaults to stdout)")
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", formatXLSX, "export format: xlsx, csv or json")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	format := strings.ToLower(extractFormat)

	v := common.NewValidator()
	v.Field("format", format, common.OneOf(formatXLSX, formatCSV, formatJSON))
	if err := v.Err(); err != nil {
		return err
	}

	in, err := application.Loader.Load(ctx, args[0])
	if err != nil {
		return err
	}

	theme := defaultTheme
	stderr := cmd.ErrOrStderr()
	result, err := application.Orchestrator.Run(ctx, in, func(s pipeline.Snapshot) {
		if line := theme.progressLine(s); line != "" {
			fmt.Fprintln(stderr, line)
		}
	})
	if err != nil {
		return err
	}
	fmt.Fprint(stderr, theme.summary(result))

	data, contentType, err := render(application.Exporter, result, format)
	if err != nil {
		return err
	}

	out := outputPath(args[0], extractOut, format)
	if out == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := application.Loader.Save(ctx, out, data, contentType); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(stderr, "%s %s\n", theme.hintStyle().Render("Wrote"), out)
	return nil
}

// render encodes the result in the requested format.
func render(exp *export.Service, result *entity.BatchResult, format string) ([]byte, string, error) {
	switch format {
	case formatCSV:
		return exp.CSV(result), constants.MIMECSV, nil
	case formatJSON:
		b, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("encode json: %w", err)
		}
		return append(b, '\n'), constants.MIMEJSON, nil
	default:
		b, err := exp.XLSX(result)
		if err != nil {
			return nil, "", err
		}
		return b, constants.MIMEXLSX, nil
	}
}

// outputPath resolves where the export goes. An empty result means stdout.
// Without --out, spreadsheets land next to a local input as resumes.<format>,
// or in the working directory for an s3:// input.
func outputPath(input, out, format string) string {
	if out != "" {
		return out
	}
	if format == formatJSON {
		return ""
	}
	name := "resumes." + format
	if source.IsS3(input) {
		return name
	}
	return filepath.Join(filepath.Dir(input), name)
}
