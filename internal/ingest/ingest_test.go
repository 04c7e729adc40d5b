package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `OutletName,Market,DistributorName*,Latitude,Longitude,Salesperson Latitude,Salesperson Longitude,Last Visited Date
Shop A,Coimbatore ,SALEEM BROTHERS,11.01,77.01,11.00,77.00,2024-03-01
Shop B,Coimbatore,Saleem Brothers,11.02,77.02,,,
Shop C,Coimbatore,Saleem Brothers,bad-lat,77.03,,,15-08-2024
`

func TestParseCSV(t *testing.T) {
	rs, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, rs, 3)

	a := rs[0]
	assert.Equal(t, "Shop A", a.Outlet)
	assert.Equal(t, "coimbatore", a.Market)
	assert.Equal(t, "saleem brothers", a.Distributor)
	require.NotNil(t, a.Latitude)
	assert.Equal(t, 11.01, *a.Latitude)
	require.NotNil(t, a.SalespersonLatitude)
	assert.Equal(t, 11.00, *a.SalespersonLatitude)
	require.NotNil(t, a.LastVisited)
	assert.Equal(t, "2024-03-01", a.LastVisited.Format("2006-01-02"))

	b := rs[1]
	assert.Nil(t, b.SalespersonLatitude)
	assert.Nil(t, b.LastVisited)

	// bad coordinate parses to nil, row itself is kept
	c := rs[2]
	assert.Nil(t, c.Latitude)
	require.NotNil(t, c.LastVisited)
	assert.Equal(t, "2024-08-15", c.LastVisited.Format("2006-01-02"))
}

func TestParseCSVErrors(t *testing.T) {
	t.Run("missing required column", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader("OutletName,Market\nShop A,Coimbatore\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing required columns")
	})

	t.Run("header only", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader("OutletName,Market,DistributorName,Latitude,Longitude\n"))
		assert.ErrorIs(t, err, ErrEmptySheet)
	})

	t.Run("blank outlet rows skipped", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader(
			"OutletName,Market,DistributorName,Latitude,Longitude\n ,x,y,1,2\n"))
		assert.ErrorIs(t, err, ErrEmptySheet)
	})
}

func TestParseWorkbook(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"OutletName", "Market", "DistributorName", "Latitude", "Longitude"},
		{"Shop A", "Coimbatore", "Saleem Brothers", 11.01, 77.01},
		{"Shop B", "Coimbatore", "Saleem Brothers", 11.02, 77.02},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	rs, err := ParseWorkbook(&buf)
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, "Shop A", rs[0].Outlet)
	require.NotNil(t, rs[1].Longitude)
	assert.Equal(t, 77.02, *rs[1].Longitude)
}

func TestParseDispatch(t *testing.T) {
	t.Run("csv by extension", func(t *testing.T) {
		rs, err := Parse(strings.NewReader(sampleCSV), "export.CSV")
		require.NoError(t, err)
		assert.Len(t, rs, 3)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := Parse(strings.NewReader("x"), "export.pdf")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestSanitizeColumn(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"OutletName", "outletname"},
		{"Distributor Name*", "distributor_name"},
		{"  Salesperson   Latitude ", "salesperson_latitude"},
		{"LAST VISITED DATE", "last_visited_date"},
		{"Market", "market"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeColumn(tt.in))
	}
}
