package fileio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAnyMapsCSV(t *testing.T) {
	csv := "HBL NO,Vessel,,Port\n" +
		"HBL-1,MV Ocean Star,x,SINGAPORE\n" +
		",,,\n" +
		"HBL-2,Wan Hai 503,,KAOHSIUNG\n"

	rows, err := ReadAnyMaps(strings.NewReader(csv), "bookings.csv", 1)
	require.NoError(t, err)
	require.Len(t, rows, 2) // fully empty row dropped

	assert.Equal(t, "HBL-1", rows[0]["HBL NO"])
	assert.Equal(t, "MV Ocean Star", rows[0]["Vessel"])
	assert.Equal(t, "SINGAPORE", rows[0]["Port"])
	// blank header gets a positional name
	assert.Equal(t, "x", rows[0]["Column 3"])
	assert.Equal(t, "KAOHSIUNG", rows[1]["Port"])
}

func TestReadAnyMapsHeaderRow(t *testing.T) {
	csv := "exported 2024-04-03,,\n" +
		"HBL NO,Vessel,Port\n" +
		"HBL-1,Ocean Star,SINGAPORE\n"

	rows, err := ReadAnyMaps(strings.NewReader(csv), "export.csv", 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ocean Star", rows[0]["Vessel"])
}

func TestReadAnyMapsUnsupported(t *testing.T) {
	_, err := ReadAnyMaps(strings.NewReader("x"), "data.pdf", 1)
	require.Error(t, err)
}

func TestCleanCell(t *testing.T) {
	assert.Equal(t, "HBL NO", cleanCell(" HBL\nNO "))
	assert.Equal(t, "", cleanCell("  \r\n "))
	assert.Equal(t, "Ocean Star", cleanCell("Ocean Star"))
}
