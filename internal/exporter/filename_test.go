package exporter

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilename(t *testing.T) {
	name := Filename("Sleep Comparison", "csv", []string{"BKQ3HJ", "BRT57L"})
	assert.Regexp(t, regexp.MustCompile(`^Sleep_Comparison_BKQ3HJ_BRT57L_\d{8}T\d{6}\.csv$`), name)
}

func TestFilenameCollapsesManyParticipants(t *testing.T) {
	name := Filename("cohort export", ".xlsx", []string{"A", "B", "C", "D"})
	assert.Regexp(t, regexp.MustCompile(`^cohort_export_4_participants_\d{8}T\d{6}\.xlsx$`), name)
}

func TestFilenameSanitizes(t *testing.T) {
	name := Filename("steps / heart-rate!", "png", nil)
	assert.Regexp(t, regexp.MustCompile(`^steps_heart-rate_\d{8}T\d{6}\.png$`), name)
}

func TestFilenameEmptyTitle(t *testing.T) {
	name := Filename("", "pdf", nil)
	assert.Regexp(t, regexp.MustCompile(`^export_\d{8}T\d{6}\.pdf$`), name)
}
