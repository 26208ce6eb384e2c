package session

import (
	"regexp"
	"strings"
	"unicode"
)

// fillerPattern matches one leading filler phrase. Anchored: only the very
// start of the message is stripped, so "Can you tell me about X" loses
// "can you " and keeps "tell me about X".
var fillerPattern = regexp.MustCompile(`(?i)^(can you |please |i want to |tell me about |what is |how to |could you |help me with )`)

var genericTitles = map[string]bool{
	"New Chat":             true,
	"New Conversation":     true,
	"Initial Conversation": true,
}

// IsGenericTitle reports whether title is a server placeholder that should
// be replaced by an inferred one.
func IsGenericTitle(title string) bool {
	return genericTitles[title]
}

// InferTitle derives a session title from the first user message: strip a
// leading filler phrase, capitalize, and truncate to 35 characters on a
// word boundary with an ellipsis. If that leaves fewer than 3 characters,
// fall back to the first 40 characters of the raw message. Never empty for
// non-empty input.
func InferTitle(firstMessage string) string {
	title := strings.TrimSpace(firstMessage)
	title = fillerPattern.ReplaceAllString(title, "")
	title = capitalize(title)

	if runes := []rune(title); len(runes) > 35 {
		words := strings.Split(string(runes[:35]), " ")
		title = strings.Join(words[:len(words)-1], " ") + "..."
	}

	if len([]rune(title)) < 3 {
		raw := []rune(firstMessage)
		if len(raw) > 40 {
			return string(raw[:40]) + "..."
		}
		return firstMessage
	}

	return title
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
