package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/alnah/go-subtitler/internal/config"
	"github.com/alnah/go-subtitler/internal/format"
	"github.com/alnah/go-subtitler/internal/lang"
	"github.com/alnah/go-subtitler/internal/pipeline"
	"github.com/alnah/go-subtitler/internal/transcribe"
	"github.com/alnah/go-subtitler/internal/translate"
)

// translateOptions holds the flags of the translate command.
type translateOptions struct {
	output   string
	to       string
	title    string
	channel  string
	provider string
	model    string
	duration string
	budget   int
	maxDepth int
	parallel int
	verbose  bool
}

// TranslateCmd creates the translate command.
// The env parameter provides injectable dependencies for testing.
func TranslateCmd(env *Env) *cobra.Command {
	var opts translateOptions

	cmd := &cobra.Command{
		Use:   "translate <input> [more-audio...]",
		Short: "Translate a transcript into subtitles",
		Long: `Translate a transcript into SRT subtitles in the target language.

The input is a plain-text transcript (.txt), existing captions (.srt) or one or
more audio files. Captions provide the real video length, so subtitle timing
matches the video. Audio is transcribed first (always with OpenAI).

The transcript is split into sentence-aligned chunks sized for the model and
translated chunk by chunk. A chunk that keeps failing is replaced by a
"[Translation failed]" line so the rest of the subtitles stay usable.

Supported formats: txt, srt, ogg, mp3, wav, m4a, flac, mp4, mpeg, mpga, webm`,
		Example: `  subtitler translate talk.srt --to fr
  subtitler translate transcript.txt --to ja --title "Go at scale" --channel GopherCon
  subtitler translate part1.mp3 part2.mp3 --to de --duration 42m10s
  subtitler translate talk.srt --to es --provider deepseek -o talk.es.srt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd.Context(), env, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file path (default: <input>.<lang>.srt)")
	cmd.Flags().StringVarP(&opts.to, "to", "t", "", "Target language (BCP 47, e.g. fr, pt-BR); default from config")
	cmd.Flags().StringVar(&opts.title, "title", "", "Video title, used as translation context")
	cmd.Flags().StringVar(&opts.channel, "channel", "", "Channel or author name, used as translation context")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "LLM provider: openai, deepseek (default from config, else openai)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model name (default depends on provider)")
	cmd.Flags().StringVar(&opts.duration, "duration", "", "Real video length, e.g. 12m30s (default: from captions or estimated)")
	cmd.Flags().IntVar(&opts.budget, "budget", 0, "Chunk budget in size units (default: from transcript length)")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", pipeline.DefaultMaxDepth, "Max re-chunk depth after size-limit errors")
	cmd.Flags().IntVarP(&opts.parallel, "parallel", "p", 4, "Max concurrent transcription requests (1-10)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

// clampParallel constrains parallel request count to valid range [1, MaxRecommendedParallel].
func clampParallel(n int) int {
	if n < 1 {
		return 1
	}
	if n > transcribe.MaxRecommendedParallel {
		return transcribe.MaxRecommendedParallel
	}
	return n
}

// resolveTarget picks the target language: flag, then config.
func resolveTarget(flag string, cfg config.Config) (lang.Language, error) {
	raw := flag
	if raw == "" {
		raw = cfg.TargetLang
	}
	if raw == "" {
		return lang.Language{}, fmt.Errorf("%w (use --to or: subtitler config set target-lang <code>)", ErrTargetLangMissing)
	}
	return lang.Parse(raw)
}

// runTranslate executes the translation pipeline.
// Validation order: files exist -> format -> config -> language -> provider ->
// numeric flags -> output -> API keys
func runTranslate(ctx context.Context, env *Env, args []string, opts translateOptions) error {
	// === VALIDATION (fail-fast) ===

	kind, err := checkInputs(args)
	if err != nil {
		return err
	}

	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}

	target, err := resolveTarget(opts.to, cfg)
	if err != nil {
		return err
	}

	choice, err := resolveProvider(opts.provider, opts.model, cfg)
	if err != nil {
		return err
	}

	duration, err := parseDuration(opts.duration)
	if err != nil {
		return err
	}
	if opts.budget < 0 {
		return fmt.Errorf("--budget must not be negative: %w", ErrUsage)
	}
	if opts.maxDepth < 0 {
		return fmt.Errorf("--max-depth must not be negative: %w", ErrUsage)
	}

	output := config.ResolveOutputPath(opts.output, config.ExpandPath(cfg.OutputDir),
		deriveOutputPath(args[0], target.String()))
	if err := checkOutputFree(output); err != nil {
		return err
	}
	warnNonSRTExtension(env.Stderr, output)

	provider, err := newProvider(env, choice)
	if err != nil {
		return err
	}

	logger := env.newLogger(opts.verbose)
	var runnerOpts []pipeline.RunnerOption
	if kind == kindAudio {
		openaiKey, err := requireAPIKey(env, translate.OpenAI)
		if err != nil {
			return err
		}
		transcriber, err := env.TranscriberFactory.NewTranscriber(openaiKey)
		if err != nil {
			return err
		}
		runnerOpts = append(runnerOpts, pipeline.WithTranscriber(transcriber, clampParallel(opts.parallel)))
	}

	// === LOAD ===

	in, err := loadInput(args, kind)
	if err != nil {
		return err
	}
	if duration > 0 {
		in.Duration = duration
	}
	in.MaxBudget = opts.budget
	in.Video = translate.VideoContext{Title: opts.title, Channel: opts.channel}

	// === TRANSLATE ===

	if kind == kindAudio {
		var size int64
		for _, a := range in.Audio {
			size += int64(len(a.Data))
		}
		fmt.Fprintf(env.Stderr, "Transcribing %s (%s)...\n", format.Count(len(in.Audio), "audio part"), format.Size(size))
	}

	orchestrator := pipeline.NewOrchestrator(provider, target,
		pipeline.WithLogger(logger),
		pipeline.WithMaxDepth(opts.maxDepth),
		pipeline.WithProgress(func(current, total int) {
			fmt.Fprintf(env.Stderr, "Translating chunk %d/%d...\n", current, total)
		}),
	)

	start := env.Now()
	fmt.Fprintf(env.Stderr, "Translating to %s (provider: %s)...\n", target.DisplayName(), choice.name)
	res, err := pipeline.NewRunner(orchestrator, runnerOpts...).Run(ctx, in)
	if err != nil {
		return err
	}

	// === WRITE OUTPUT ===

	if err := writeFileAtomic(output, res.SRT); err != nil {
		return err
	}

	printStats(env.Stderr, res.Stats)
	fmt.Fprintf(env.Stderr, "Done: %s (%s elapsed)\n", output, format.Clock(env.Now().Sub(start)))
	return nil
}

// printStats writes the run summary.
func printStats(w io.Writer, s pipeline.Stats) {
	fmt.Fprintf(w, "Chunks: %d total, %d translated, %d failed, %d retried, %d re-chunked\n",
		s.TotalChunks, s.Successful, s.Failed, s.Retried, s.Rechunked)
	if s.UsedAudioFallback {
		fmt.Fprintln(w, "Transcript: from audio transcription")
	}
	if s.Failed > 0 {
		fmt.Fprintf(w, "Warning: %s failed and replaced by placeholders\n", format.Count(s.Failed, "chunk"))
	}
}
