package exporter

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// maxEmbeddedIDs caps how many participant IDs a filename carries
// before collapsing to a count.
const maxEmbeddedIDs = 3

// Filename builds a sanitized download name like
// "sleep_comparison_BKQ3HJ_BRT57L_20260828T143000.csv".
func Filename(title, ext string, participantIDs []string) string {
	parts := []string{sanitize(title)}
	if parts[0] == "" {
		parts[0] = "export"
	}

	if len(participantIDs) > maxEmbeddedIDs {
		parts = append(parts, fmt.Sprintf("%d_participants", len(participantIDs)))
	} else {
		for _, id := range participantIDs {
			if s := sanitize(id); s != "" {
				parts = append(parts, s)
			}
		}
	}

	parts = append(parts, time.Now().UTC().Format("20060102T150405"))
	return strings.Join(parts, "_") + "." + strings.TrimPrefix(ext, ".")
}

// sanitize lowercases nothing but replaces every run of characters
// outside [A-Za-z0-9-] with a single underscore.
func sanitize(s string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r) && r < 128, r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}
