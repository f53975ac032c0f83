package exporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteExcel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, sampleRecords()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"Data"}, f.GetSheetList())

	rows, err := f.GetRows("Data")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "date", rows[0][0])
	assert.Equal(t, "minutesAsleep", rows[0][4])
	assert.Equal(t, "2023-06-01", rows[1][0])
	assert.Equal(t, "BKQ3HJ", rows[1][1])
	assert.Equal(t, "382", rows[1][4])
}

func TestWriteExcelLeavesMissingCellsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, sampleRecords()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	// Row 3 is BRT57L, which has no steps value (column 11, "steps"
	// after the four base columns and six sleep metrics).
	cell, err := f.GetCellValue("Data", "K3")
	require.NoError(t, err)
	assert.Empty(t, cell)
}
