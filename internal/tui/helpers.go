package tui

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// formatTime renders a relative timestamp for feed rows.
func formatTime(t time.Time, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// resolveLink turns a notification link into an absolute URL. Empty links go to "/".
func resolveLink(base, link string) (string, error) {
	if strings.TrimSpace(link) == "" {
		link = "/"
	}
	ref, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parse link: %w", err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	return b.ResolveReference(ref).String(), nil
}
