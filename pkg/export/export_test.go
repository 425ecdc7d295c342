package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRendersRowsInHeaderOrder(t *testing.T) {
	data := Dataset{Headers: []string{"Class", "Present", "Rate (%)"}}
	data.AddRow("Grade 7 East", "18", "90")
	data.AddRow("Grade 8 West")

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(out), "\ufeff")), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Class,Present,Rate (%)", lines[0])
	assert.Equal(t, "Grade 7 East,18,90", lines[1])
	assert.Equal(t, "Grade 8 West,,", lines[2])
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{}, "empty")
	assert.Error(t, err)
}

func TestPDFExporterProducesDocument(t *testing.T) {
	data := Dataset{Headers: []string{"Student", "Amount", "Status"}}
	data.AddRow("Wanjiru", "1500.00", "paid")

	out, err := NewPDFExporter().Render(data, "Financial Overview")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	empty, err := NewPDFExporter().Render(Dataset{Headers: []string{"A", "B", "C", "D", "E", "F", "G"}}, "")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(empty, []byte("%PDF")))
}
