package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset(rows int) Dataset {
	data := Dataset{Headers: []string{"Reg Number", "School Name", "Status"}, Widths: []float64{1, 3, 1}}
	for i := 0; i < rows; i++ {
		data.Rows = append(data.Rows, map[string]string{
			"Reg Number":  fmt.Sprintf("VARSDB-2025-%04d", i+1),
			"School Name": "Queen's College, Yaba",
			"Status":      "Pending",
		})
	}
	return data
}

func TestCSVRender(t *testing.T) {
	out, err := NewCSVExporter(true).Render(sampleDataset(2))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, utf8BOM))

	records, err := csv.NewReader(bytes.NewReader(out[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Reg Number", "School Name", "Status"}, records[0])
	assert.Equal(t, []string{"VARSDB-2025-0002", "Queen's College, Yaba", "Pending"}, records[2])
}

func TestCSVRenderWithoutBOM(t *testing.T) {
	out, err := NewCSVExporter(false).Render(Dataset{Headers: []string{"a"}})
	require.NoError(t, err)
	assert.Equal(t, "a\n", string(out))

	_, err = NewCSVExporter(false).Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFRenderPaginates(t *testing.T) {
	exporter := NewPDFExporter()
	exporter.now = func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) }

	short, err := exporter.Render(sampleDataset(1), "Registrations")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(short, []byte("%PDF-")))

	long, err := exporter.Render(sampleDataset(120), "Registrations")
	require.NoError(t, err)
	assert.Greater(t, bytes.Count(long, []byte("/Type /Page\n")), 1)

	_, err = exporter.Render(Dataset{}, "")
	assert.Error(t, err)
}

func TestColumnWidthsFillPage(t *testing.T) {
	widths := columnWidths(Dataset{Headers: []string{"a", "b", "c"}, Widths: []float64{1, 2}})
	require.Len(t, widths, 3)
	assert.InDelta(t, pageWidthLandscape, widths[0]+widths[1]+widths[2], 0.001)
	assert.InDelta(t, widths[0]*2, widths[1], 0.001)
	assert.InDelta(t, widths[0], widths[2], 0.001)
}
