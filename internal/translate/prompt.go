package translate

import (
	"fmt"
	"strings"

	"github.com/alnah/go-subtitler/internal/lang"
)

// excerptLength is the number of characters of the first chunk quoted in every prompt.
const excerptLength = 200

// VideoContext is the light metadata quoted in every prompt.
type VideoContext struct {
	Title   string
	Channel string
}

// Prompt builds translation requests for one video.
// Every chunk shares the same system instruction: target language, video
// metadata and an opening excerpt, so terminology stays stable across chunks.
type Prompt struct {
	target  lang.Language
	video   VideoContext
	excerpt string
}

// NewPrompt returns a Prompt for translating into target. firstChunk is the
// text of the video's first chunk; only its opening excerpt is kept.
func NewPrompt(target lang.Language, video VideoContext, firstChunk string) Prompt {
	return Prompt{
		target:  target,
		video:   video,
		excerpt: Excerpt(firstChunk, excerptLength),
	}
}

// System returns the system instruction.
func (p Prompt) System() string {
	var b strings.Builder

	target := p.target.DisplayName()
	if target == "" {
		target = "English"
	}
	fmt.Fprintf(&b, "You are a professional subtitle translator. Translate the user's text into %s.\n", target)
	b.WriteString("Return only the translation. Keep sentence order and punctuation. Do not add notes, quotes or explanations.\n")

	if p.video.Title != "" || p.video.Channel != "" {
		b.WriteString("\nVideo context:\n")
		if p.video.Title != "" {
			fmt.Fprintf(&b, "- Title: %s\n", p.video.Title)
		}
		if p.video.Channel != "" {
			fmt.Fprintf(&b, "- Channel: %s\n", p.video.Channel)
		}
	}

	if p.excerpt != "" {
		fmt.Fprintf(&b, "\nThe video opens with: %q\nKeep names and terminology consistent with it.\n", p.excerpt)
	}

	return b.String()
}

// Messages returns the conversation for translating content.
func (p Prompt) Messages(content string) []Message {
	return []Message{
		{Role: RoleSystem, Content: p.System()},
		{Role: RoleUser, Content: content},
	}
}

// Excerpt returns the first n characters of text, whitespace-normalized,
// with "..." appended when truncated.
func Excerpt(text string, n int) string {
	runes := []rune(strings.Join(strings.Fields(text), " "))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "..."
}
