package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/resume-extractor/constants"
	"github.com/joseph-ayodele/resume-extractor/internal/entity"
)

var (
	atsJob      string
	atsDetailed bool
)

var atsCmd = &cobra.Command{
	Use:   "ats-match <resume>",
	Short: "Score a resume against a job description",
	Long: `Score a PDF or DOCX resume (local path or s3:// URI) against a job
description on a 0-100 scale.

--job takes either a path to a text file or the description itself.

Examples:
  resume-batch ats-match ./cv.pdf --job ./backend-engineer.txt
  resume-batch ats-match ./cv.docx --job "Senior Go engineer, Kubernetes, AWS" --detailed`,
	Args: cobra.ExactArgs(1),
	RunE: runATSMatch,
}

func init() {
	atsCmd.Flags().StringVarP(&atsJob, "job", "j", "", "job description text or path to a file containing it")
	atsCmd.Flags().BoolVar(&atsDetailed, "detailed", false, "include matched and missing keywords")
	_ = atsCmd.MarkFlagRequired("job")
}

func runATSMatch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	jd, err := readJobDescription(atsJob)
	if err != nil {
		return err
	}

	in, err := application.Loader.Load(ctx, args[0])
	if err != nil {
		return err
	}
	mt, _ := constants.ResolveMediaType(in.DeclaredType, in.Name)
	text, err := application.Processor.Text.Run(ctx, entity.Document{Name: in.Name, Content: in.Content, MediaType: mt})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !atsDetailed {
		score, err := application.Matcher.Score(ctx, text, jd)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %d/100\n", defaultTheme.statusStyle().Render(in.Name), score)
		return nil
	}

	match, err := application.Matcher.Detailed(ctx, text, jd)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(match, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	fmt.Fprintln(out, string(b))
	return nil
}

// readJobDescription treats arg as a file path when such a file exists and as
// the description text otherwise.
func readJobDescription(arg string) (string, error) {
	if fi, err := os.Stat(arg); err == nil && !fi.IsDir() {
		b, err := os.ReadFile(arg)
		if err != nil {
			return "", fmt.Errorf("read job description: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	return strings.TrimSpace(arg), nil
}
