// Package sanitize is the boundary between free-text user/LLM content and the
// two injection surfaces around it: prompt injection into the model and
// markup/script injection into the rendered UI. It is deliberately
// pattern-based, not a parser; the pattern set is the contract.
package sanitize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Input length limits by kind.
const (
	MaxIdeaLength               = 5000
	MaxProfileNameLength        = 100
	MaxProfileDescriptionLength = 2000
	MaxAIOutputLength           = 50000
)

// ErrInvalidInput marks input rejected by sanitization.
var ErrInvalidInput = errors.New("invalid input")

// injectionPatterns flag likely prompt-injection attempts. Matched
// case-insensitively against the full input.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+previous\s+instructions`),
	regexp.MustCompile(`(?i)ignore\s+all\s+previous`),
	regexp.MustCompile(`(?i)disregard\s+previous`),
	regexp.MustCompile(`(?i)forget\s+previous`),
	regexp.MustCompile(`(?i)new\s+instructions:`),
	regexp.MustCompile(`(?i)system\s+prompt:`),
	regexp.MustCompile(`(?i)</?\s*system\s*>`),
	regexp.MustCompile(`(?i)<\s*assistant\s*>`),
	regexp.MustCompile(`(?i)\[SYSTEM\]`),
	regexp.MustCompile(`(?i)\[INST\]`),
	regexp.MustCompile(`(?i)###\s*Instruction`),
}

var (
	controlChars  = regexp.MustCompile("[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]")
	scriptBlocks  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	jsScheme      = regexp.MustCompile(`(?i)javascript:`)
	eventHandlers = regexp.MustCompile(`(?i)on\w+\s*=`)
)

func maxLengthFor(kind string) int {
	switch kind {
	case "idea":
		return MaxIdeaLength
	case "profile_name":
		return MaxProfileNameLength
	case "profile_description":
		return MaxProfileDescriptionLength
	default:
		return MaxIdeaLength
	}
}

// UserInput cleans user-supplied text before it reaches an LLM prompt. It
// trims, enforces a per-kind length limit, rejects likely prompt-injection
// phrases, strips control characters, and collapses whitespace runs. Empty
// input returns empty without error.
func UserInput(text, kind string) (string, error) {
	if text == "" {
		return "", nil
	}

	text = strings.TrimSpace(text)

	// Limits are character counts, not bytes; multibyte text must not be
	// penalized for its encoding.
	if max := maxLengthFor(kind); utf8.RuneCountInString(text) > max {
		return "", fmt.Errorf("%w: input too long, maximum %d characters allowed", ErrInvalidInput, max)
	}

	for _, pattern := range injectionPatterns {
		if pattern.MatchString(text) {
			return "", fmt.Errorf("%w: input contains suspicious content, please rephrase without special instructions", ErrInvalidInput)
		}
	}

	text = controlChars.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")

	return text, nil
}

// AIOutput cleans LLM output before display. It never fails; the result is a
// best-effort safe string with script tags, javascript: schemes, and inline
// event handlers removed, truncated at MaxAIOutputLength.
func AIOutput(text string) string {
	if text == "" {
		return ""
	}

	if utf8.RuneCountInString(text) > MaxAIOutputLength {
		// Cut on a rune boundary so truncation never yields invalid UTF-8.
		text = string([]rune(text)[:MaxAIOutputLength]) + "... [truncated]"
	}

	text = controlChars.ReplaceAllString(text, "")
	text = scriptBlocks.ReplaceAllString(text, "")
	text = jsScheme.ReplaceAllString(text, "")
	text = eventHandlers.ReplaceAllString(text, "")

	return text
}

var (
	pathSeparators = regexp.MustCompile(`[/\\]+`)
	repeatedDots   = regexp.MustCompile(`\.\.+`)
	unsafeFileChar = regexp.MustCompile(`[^\w\s\-.]`)
)

// Filename makes a name safe for use as a file name: path separators and
// repeated dots become underscores, disallowed characters are stripped, and
// the result is capped at 255 characters.
func Filename(name string) string {
	name = pathSeparators.ReplaceAllString(name, "_")
	name = repeatedDots.ReplaceAllString(name, "_")
	name = unsafeFileChar.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, ". ")
	name = strings.TrimRight(name, " ")

	if len(name) > 255 {
		name = name[:255]
	}
	if name == "" {
		return "untitled"
	}
	return name
}

// blockedHosts match loopback and private-network URLs to keep fetches from
// reaching internal services.
var blockedHosts = []*regexp.Regexp{
	regexp.MustCompile(`localhost`),
	regexp.MustCompile(`127\.0\.0\.1`),
	regexp.MustCompile(`0\.0\.0\.0`),
	regexp.MustCompile(`192\.168\.`),
	regexp.MustCompile(`10\.`),
	regexp.MustCompile(`172\.(1[6-9]|2[0-9]|3[01])\.`),
	regexp.MustCompile(`\[::1\]`),
	regexp.MustCompile(`\[::ffff:127\.0\.0\.1\]`),
}

// ValidURL reports whether a URL is safe to fetch: http/https only, and not
// pointing at localhost or a private network.
func ValidURL(raw string) bool {
	if raw == "" {
		return false
	}

	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}

	for _, pattern := range blockedHosts {
		if pattern.MatchString(lower) {
			return false
		}
	}
	return true
}
