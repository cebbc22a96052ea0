package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/alnah/go-subtitler/internal/apierr"
	"github.com/alnah/go-subtitler/internal/config"
	"github.com/alnah/go-subtitler/internal/lang"
	"github.com/alnah/go-subtitler/internal/message"
	"github.com/alnah/go-subtitler/internal/pipeline"
	"github.com/alnah/go-subtitler/internal/transcribe"
	"github.com/alnah/go-subtitler/internal/translate"
)

// HostCmd creates the native-messaging host command.
func HostCmd(env *Env) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "host",
		Short: "Run as a browser native-messaging host",
		Long: `Serve subtitle requests from a browser add-on over native messaging.

Messages are length-prefixed JSON on stdin and stdout. Logs go to stderr.
The host exits when the browser closes stdin.

Requests:
  generate   translate a transcript (or audio) into SRT, streaming progress
  estimate   size estimate and chunk count, no API call`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHost(cmd.Context(), env, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

// received is one Conn.Receive outcome.
type received struct {
	req message.Request
	id  string
	err error
}

// runHost serves requests one at a time until stdin closes or ctx ends.
func runHost(ctx context.Context, env *Env, verbose bool) error {
	logger := env.newLogger(verbose)
	conn := message.NewConn(env.Stdin, env.Stdout)

	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		logger.WithError(err).Warn("failed to load config")
	}

	// Reads block on stdin, so they run apart from the dispatch loop to let
	// cancellation through.
	inbox := make(chan received)
	go func() {
		defer close(inbox)
		for {
			req, id, err := conn.Receive()
			select {
			case inbox <- received{req: req, id: id, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil && !isDecodeError(err) {
				return
			}
		}
	}()

	logger.Debug("native messaging host started")
	for {
		var in received
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in, ok = <-inbox:
			if !ok {
				return ctx.Err()
			}
		}

		if in.err != nil {
			if errors.Is(in.err, io.EOF) {
				logger.Debug("stdin closed, host stopping")
				return nil
			}
			if !isDecodeError(in.err) {
				return fmt.Errorf("native messaging: %w", in.err)
			}
			logger.WithError(in.err).WithField("id", in.id).Warn("rejected request")
			if err := conn.Send(message.NewError(in.id, message.CodeInvalidRequest, in.err.Error())); err != nil {
				return err
			}
			continue
		}

		resp := dispatch(ctx, env, cfg, conn, logger, in.req)
		if err := conn.Send(resp); err != nil {
			if !errors.Is(err, message.ErrTooLarge) {
				return err
			}
			logger.WithError(err).WithField("id", in.id).Error("response too large")
			tooLarge := message.NewError(in.id, message.CodeInternal, err.Error())
			if err := conn.Send(tooLarge); err != nil {
				return err
			}
		}
	}
}

// isDecodeError reports whether err concerns one message, leaving the stream usable.
func isDecodeError(err error) bool {
	return errors.Is(err, message.ErrMalformed) ||
		errors.Is(err, message.ErrUnknownType) ||
		errors.Is(err, message.ErrInvalid)
}

// dispatch handles one request and returns its final response.
func dispatch(ctx context.Context, env *Env, cfg config.Config, conn *message.Conn, logger logrus.FieldLogger, req message.Request) message.Response {
	id := req.RequestID()
	log := logger.WithFields(logrus.Fields{"id": id, "type": req.RequestType()})
	log.Debug("request received")

	switch r := req.(type) {
	case *message.Estimate:
		plan := pipeline.NewPlan(r.Transcript, 0, r.MaxBudget, log)
		return message.NewEstimate(id, message.EstimateResult{
			IsLongVideo:          plan.Estimate.IsLongVideo,
			EstimatedMinutes:     plan.Estimate.EstimatedMinutes,
			RecommendedChunkSize: plan.Estimate.RecommendedChunkSize,
			WarningMessage:       plan.Estimate.WarningMessage,
			Chunks:               len(plan.Chunks),
		})

	case *message.Generate:
		res, err := generate(ctx, env, cfg, conn, log, r)
		if err != nil {
			log.WithError(err).Warn("generate failed")
			return message.NewError(id, errorCode(err), err.Error())
		}
		return message.NewResult(id, message.Result{
			SRT: res.SRT,
			Stats: message.Stats{
				RunID:             res.Stats.RunID,
				TotalChunks:       res.Stats.TotalChunks,
				Successful:        res.Stats.Successful,
				Failed:            res.Stats.Failed,
				Retried:           res.Stats.Retried,
				Rechunked:         res.Stats.Rechunked,
				UsedAudioFallback: res.Stats.UsedAudioFallback,
			},
		})

	default:
		return message.NewError(id, message.CodeInvalidRequest, fmt.Sprintf("unhandled request type %q", req.RequestType()))
	}
}

// generate runs the pipeline for one request, streaming progress over conn.
func generate(ctx context.Context, env *Env, cfg config.Config, conn *message.Conn, log logrus.FieldLogger, r *message.Generate) (pipeline.Result, error) {
	target, err := lang.Parse(r.TargetLang)
	if err != nil {
		return pipeline.Result{}, err
	}
	choice, err := resolveProvider(r.Provider, r.Model, cfg)
	if err != nil {
		return pipeline.Result{}, err
	}
	provider, err := newProvider(env, choice)
	if err != nil {
		return pipeline.Result{}, err
	}

	in := pipeline.Input{
		Text:      r.Transcript,
		Duration:  r.Duration(),
		MaxBudget: r.MaxBudget,
		Video:     translate.VideoContext{Title: r.Title, Channel: r.Channel},
	}
	for _, part := range r.Audio {
		in.Audio = append(in.Audio, transcribe.Audio{Name: part.Name, Data: part.Data, Duration: part.Duration()})
	}

	var runnerOpts []pipeline.RunnerOption
	if len(in.Audio) > 0 {
		if key := env.Getenv(EnvOpenAIAPIKey); key != "" {
			transcriber, err := env.TranscriberFactory.NewTranscriber(key)
			if err != nil {
				return pipeline.Result{}, err
			}
			runnerOpts = append(runnerOpts, pipeline.WithTranscriber(transcriber, transcribe.MaxRecommendedParallel))
		}
	}

	orchestrator := pipeline.NewOrchestrator(provider, target,
		pipeline.WithLogger(log),
		pipeline.WithProgress(func(current, total int) {
			if err := conn.Send(message.NewProgress(r.ID, current, total)); err != nil {
				log.WithError(err).Warn("failed to send progress")
			}
		}),
	)
	return pipeline.NewRunner(orchestrator, runnerOpts...).Run(ctx, in)
}

// errorCode maps a generate failure to the code the add-on acts on.
func errorCode(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return message.CodeCanceled
	case errors.Is(err, pipeline.ErrInputUnavailable):
		return message.CodeInputUnavailable
	case errors.Is(err, ErrAPIKeyMissing), errors.Is(err, apierr.ErrAuthFailed):
		return message.CodeAuthFailed
	case errors.Is(err, apierr.ErrQuotaExceeded):
		return message.CodeQuotaExceeded
	case errors.Is(err, lang.ErrInvalid), errors.Is(err, translate.ErrUnknownProvider):
		return message.CodeInvalidRequest
	default:
		return message.CodeInternal
	}
}
