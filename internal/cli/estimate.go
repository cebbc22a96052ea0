package cli

import (
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/alnah/go-subtitler/internal/format"
	"github.com/alnah/go-subtitler/internal/pipeline"
	"github.com/alnah/go-subtitler/internal/srt"
	"github.com/alnah/go-subtitler/internal/translate"
)

// previewLength is how much of each chunk the plan table shows.
const previewLength = 48

// estimateOptions holds the flags of the estimate command.
type estimateOptions struct {
	budget   int
	duration string
	verbose  bool
}

// EstimateCmd creates the estimate command.
func EstimateCmd(env *Env) *cobra.Command {
	var opts estimateOptions

	cmd := &cobra.Command{
		Use:   "estimate <transcript>",
		Short: "Show size estimate and chunk plan without translating",
		Long: `Estimate a transcript's spoken length and show how it would be split
into translation chunks. No API call is made.

Accepts a plain-text transcript (.txt) or captions (.srt).`,
		Example: `  subtitler estimate talk.srt
  subtitler estimate transcript.txt --budget 1500`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(env, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.budget, "budget", 0, "Chunk budget in size units (default: from transcript length)")
	cmd.Flags().StringVar(&opts.duration, "duration", "", "Real video length, e.g. 12m30s")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

// runEstimate prints the size estimate and chunk table to stdout.
func runEstimate(env *Env, inputPath string, opts estimateOptions) error {
	kind, err := checkInputs([]string{inputPath})
	if err != nil {
		return err
	}
	if kind == kindAudio {
		return fmt.Errorf("estimate needs a transcript or captions, not audio: %w", ErrUnsupportedFormat)
	}
	if opts.budget < 0 {
		return fmt.Errorf("--budget must not be negative: %w", ErrUsage)
	}
	duration, err := parseDuration(opts.duration)
	if err != nil {
		return err
	}

	in, err := loadInput([]string{inputPath}, kind)
	if err != nil {
		return err
	}
	if duration > 0 {
		in.Duration = duration
	}

	plan := pipeline.NewPlan(in.Text, in.Duration, opts.budget, env.newLogger(opts.verbose))
	est := plan.Estimate

	longVideo := "no"
	if est.IsLongVideo {
		longVideo = "yes"
	}
	fmt.Fprintf(env.Stdout, "Estimated length: %d min (long video: %s)\n", est.EstimatedMinutes, longVideo)
	budget := est.RecommendedChunkSize
	if opts.budget > 0 {
		budget = opts.budget
	}
	fmt.Fprintf(env.Stdout, "Chunk budget: %d units\n", budget)
	if est.HasWarning() {
		fmt.Fprintf(env.Stdout, "Warning: %s\n", est.WarningMessage)
	}
	fmt.Fprintln(env.Stdout, renderPlan(plan))
	return nil
}

// renderPlan lays out one row per chunk with its start time on the subtitle track.
func renderPlan(plan pipeline.Plan) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Start", "Duration", "Chars", "Preview"})

	var offset time.Duration
	chars := 0
	for _, c := range plan.Chunks {
		n := utf8.RuneCountInString(c.Content)
		chars += n
		tw.AppendRow(table.Row{
			strconv.Itoa(c.Index),
			srt.Timestamp(offset),
			format.Clock(c.EstimatedDuration),
			strconv.Itoa(n),
			translate.Excerpt(c.Content, previewLength),
		})
		offset += c.EstimatedDuration
	}
	tw.AppendFooter(table.Row{"", "", format.Clock(offset), strconv.Itoa(chars), format.Count(len(plan.Chunks), "chunk")})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
