package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()
	out, err := exporter.Render(Dataset{
		Headers: []string{"Week", "Day", "Activity", "Status"},
		Rows: []map[string]string{
			{"Week": "1", "Day": "Monday", "Activity": "orientation", "Status": "APPROVED"},
			{"Week": "1", "Day": "Tuesday", "Activity": "crimped, tested cables", "Status": "SUBMITTED"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Week,Day,Activity,Status\n1,Monday,orientation,APPROVED\n1,Tuesday,\"crimped, tested cables\",SUBMITTED\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}
