package dispatch

import (
	"strings"

	"github.com/miro-workspace/aigateway/pkg/types"
)

// Mode is the assistant endpoint's dispatch target.
type Mode string

// Assistant dispatch modes.
const (
	ModeText  Mode = "text"
	ModeImage Mode = "image"
	ModeBoth  Mode = "both"
)

// Keyword sets for mode inference. Best-effort UX heuristic, not a hard
// contract: plain case-insensitive substring matching, no weighting.
var (
	imageKeywords = []string{
		"image", "picture", "photo", "logo", "icon", "wallpaper",
		"illustration", "render", "drawing", "sketch", "art",
	}
	textKeywords = []string{
		"explain", "write", "draft", "summarize", "outline", "describe",
	}
)

// ResolveMode decides the assistant dispatch mode. An explicit mode always
// wins; otherwise the latest user message is scanned against the keyword
// sets. Image and text keywords together yield ModeBoth, image keywords
// alone ModeImage, and everything else (including no user message) ModeText.
func ResolveMode(messages []types.ChatMessage, explicit string) Mode {
	switch Mode(explicit) {
	case ModeText, ModeImage, ModeBoth:
		return Mode(explicit)
	}

	content := strings.ToLower(types.LatestUserContent(messages))
	wantsImage := containsAny(content, imageKeywords)
	wantsText := containsAny(content, textKeywords)

	switch {
	case wantsImage && wantsText:
		return ModeBoth
	case wantsImage:
		return ModeImage
	default:
		return ModeText
	}
}

func containsAny(content string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(content, keyword) {
			return true
		}
	}
	return false
}
