package legacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEntryListShapes(t *testing.T) {
	body := `[{"id":"e1","week":1,"day":1,"text":"setup","status":"APPROVED"}]`
	tests := []struct {
		name string
		raw  string
	}{
		{"bare array", body},
		{"single envelope", `{"data":` + body + `}`},
		{"double envelope", `{"data":{"data":` + body + `}}`},
		{"leading whitespace", "\n\t " + body},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := DecodeEntryList([]byte(tt.raw))
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "e1", entries[0].ID)
			assert.Equal(t, 1, entries[0].Week)
			assert.Equal(t, "APPROVED", entries[0].Status)
		})
	}
}

func TestDecodeEntryListRejectsDeepNesting(t *testing.T) {
	raw := `{"data":{"data":{"data":[{"id":"e1"}]}}}`
	_, err := DecodeEntryList([]byte(raw))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nested deeper")
}

func TestDecodeEntryListRejectsNonArray(t *testing.T) {
	_, err := DecodeEntryList([]byte(`{"id":"e1"}`))
	require.Error(t, err)

	_, err = DecodeEntryList([]byte(``))
	require.Error(t, err)
}

func TestDecodeLogbook(t *testing.T) {
	book, err := DecodeLogbook([]byte(`{"data":{"id":"lb-1","size":24,"status":"IN_PROGRESS"}}`))
	require.NoError(t, err)
	assert.Equal(t, "lb-1", book.ID)
	assert.Equal(t, 24, book.Size)

	book, err = DecodeLogbook([]byte(`{"id":"lb-2","size":12,"status":"Passed"}`))
	require.NoError(t, err)
	assert.Equal(t, "lb-2", book.ID)
	assert.Equal(t, "Passed", book.Status)
}

func TestDecodeLogbookRejectsArrayPayload(t *testing.T) {
	_, err := DecodeLogbook([]byte(`{"data":[1,2,3]}`))
	require.Error(t, err)
}
