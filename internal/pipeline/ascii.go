package pipeline

import (
	"fmt"
	"strings"
)

// ASCIIMode selects how ASCII-art code blocks are handled.
type ASCIIMode string

const (
	// ASCIIImage turns detected ASCII art into diagram placeholders.
	ASCIIImage ASCIIMode = "image"
	// ASCIIOptimize keeps ASCII art as code drawn with a compact font.
	ASCIIOptimize ASCIIMode = "optimize"
	// ASCIIPreserve keeps ASCII art as an ordinary code block.
	ASCIIPreserve ASCIIMode = "preserve"
)

// ParseASCIIMode validates a mode name. Empty means ASCIIImage.
func ParseASCIIMode(s string) (ASCIIMode, error) {
	switch ASCIIMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ASCIIImage:
		return ASCIIImage, nil
	case ASCIIOptimize:
		return ASCIIOptimize, nil
	case ASCIIPreserve:
		return ASCIIPreserve, nil
	}
	return "", fmt.Errorf("%w: %q (want image, optimize or preserve)", ErrInvalidASCII, s)
}

const (
	// asciiRatioThreshold is the share of drawing characters above which a
	// block counts as ASCII art.
	asciiRatioThreshold = 0.10
	// asciiArrowThreshold is the arrow count above which a block counts as a
	// diagram regardless of ratio.
	asciiArrowThreshold = 5
)

const asciiDrawingChars = `+-|/\<>[]{}=*#@`

var asciiArrows = []string{"→", "←", "↑", "↓", "->", "<-", "--", "==", "~~"}

// asciiLanguages are the fence info strings that may hold ASCII art.
var asciiLanguages = map[string]bool{
	"":      true,
	"ascii": true,
	"text":  true,
	"txt":   true,
	"plain": true,
}

// IsASCIIArt reports whether content looks like a drawing rather than prose
// or code. Unicode box-drawing characters count as drawing characters.
func IsASCIIArt(content string) bool {
	if countArrows(content) > asciiArrowThreshold {
		return true
	}

	total, special := 0, 0
	for _, r := range content {
		if r == ' ' || r == '\n' || r == '\t' {
			continue
		}
		total++
		if strings.ContainsRune(asciiDrawingChars, r) || isBoxDrawing(r) {
			special++
		}
	}
	if total == 0 {
		return false
	}
	return float64(special)/float64(total) > asciiRatioThreshold
}

func countArrows(content string) int {
	n := 0
	for _, a := range asciiArrows {
		n += strings.Count(content, a)
	}
	return n
}

// isBoxDrawing covers the Box Drawing and Block Elements blocks.
func isBoxDrawing(r rune) bool {
	return r >= 0x2500 && r <= 0x259F
}
