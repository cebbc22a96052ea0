package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/alnah/go-subtitler/internal/pipeline"
	"github.com/alnah/go-subtitler/internal/srt"
	"github.com/alnah/go-subtitler/internal/transcribe"
)

// Input kinds, decided by file extension.
type inputKind int

const (
	kindTranscript inputKind = iota + 1
	kindCaptions
	kindAudio
)

// audioFormats lists audio formats accepted by OpenAI's transcription API.
// Source: https://platform.openai.com/docs/guides/speech-to-text
var audioFormats = map[string]bool{
	".ogg":  true,
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".flac": true,
	".mp4":  true,
	".mpeg": true,
	".mpga": true,
	".webm": true,
}

// supportedFormatsList returns a sorted, comma-separated list for error messages.
func supportedFormatsList() string {
	formats := []string{"srt", "txt"}
	for ext := range audioFormats {
		formats = append(formats, strings.TrimPrefix(ext, "."))
	}
	slices.Sort(formats)
	return strings.Join(formats, ", ")
}

// kindOf classifies path by extension.
func kindOf(path string) (inputKind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".txt":
		return kindTranscript, nil
	case ext == ".srt":
		return kindCaptions, nil
	case audioFormats[ext]:
		return kindAudio, nil
	default:
		return 0, fmt.Errorf("unsupported format %q (supported: %s): %w",
			ext, supportedFormatsList(), ErrUnsupportedFormat)
	}
}

// checkInputs validates that paths exist and form a usable input: a single
// transcript or captions file, or one or more audio parts.
func checkInputs(paths []string) (inputKind, error) {
	var kind inputKind
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				return 0, fmt.Errorf("%w: %s", ErrFileNotFound, p)
			}
			return 0, fmt.Errorf("cannot access input file: %w", err)
		}
		k, err := kindOf(p)
		if err != nil {
			return 0, err
		}
		if kind != 0 && k != kind {
			return 0, fmt.Errorf("cannot mix transcript, captions and audio inputs: %w", ErrUsage)
		}
		kind = k
	}
	if kind != kindAudio && len(paths) > 1 {
		return 0, fmt.Errorf("only audio inputs accept several files: %w", ErrUsage)
	}
	return kind, nil
}

// loadInput reads paths into a pipeline input.
// Captions contribute their text and their end time as the video duration.
func loadInput(paths []string, kind inputKind) (pipeline.Input, error) {
	var in pipeline.Input

	switch kind {
	case kindTranscript:
		data, err := os.ReadFile(paths[0]) // #nosec G304 -- user-specified input file
		if err != nil {
			return in, fmt.Errorf("cannot read transcript: %w", err)
		}
		in.Text = string(data)

	case kindCaptions:
		data, err := os.ReadFile(paths[0]) // #nosec G304 -- user-specified input file
		if err != nil {
			return in, fmt.Errorf("cannot read captions: %w", err)
		}
		segments, err := srt.Parse(bytes.NewReader(data))
		if err != nil {
			return in, fmt.Errorf("%s: %w", paths[0], err)
		}
		in.Text = srt.Text(segments)
		in.Duration = srt.End(segments)

	case kindAudio:
		for _, p := range paths {
			data, err := os.ReadFile(p) // #nosec G304 -- user-specified input file
			if err != nil {
				return in, fmt.Errorf("cannot read audio: %w", err)
			}
			in.Audio = append(in.Audio, transcribe.Audio{Name: filepath.Base(p), Data: data})
		}
	}

	return in, nil
}

// parseDuration parses a --duration flag value. Empty means unknown.
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q (use e.g. 12m30s)", ErrInvalidDuration, s)
	}
	return d, nil
}

// deriveOutputPath builds the default subtitle name from the first input.
// Example: "talk.srt" with target "fr" -> "talk.fr.srt"
func deriveOutputPath(inputPath, target string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "." + target + ".srt"
}
