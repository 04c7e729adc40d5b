package maps

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routeplanner/internal/model"
	"routeplanner/internal/planner"
)

func sampleRoute() *planner.Route {
	return &planner.Route{
		StartLat: 11.0,
		StartLon: 77.0,
		Stops: []model.Stop{
			{Name: "Shop A", Lat: 11.01, Lon: 77.01, LastVisit: "2024-03-01"},
			{Name: "Shop B", Lat: 11.02, Lon: 77.02, LastVisit: "Never"},
		},
	}
}

func TestPoints(t *testing.T) {
	points := Points(sampleRoute())

	require.Len(t, points, 3)
	assert.Equal(t, "start", points[0].Type)
	assert.Equal(t, "Salesperson Start/End", points[0].Name)
	assert.Equal(t, 11.0, points[0].Lat)
	assert.Equal(t, "shop", points[1].Type)
	assert.Equal(t, "Shop A", points[1].Name)
	assert.Equal(t, "Shop B", points[2].Name)
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "coimbatore", "saleem brothers", sampleRoute()))
	html := buf.String()

	assert.Contains(t, html, "<title>Route: coimbatore / saleem brothers</title>")
	assert.Contains(t, html, "leaflet@1.9.4")
	assert.Contains(t, html, "Salesperson Start/End")
	assert.Contains(t, html, "1. Shop A")
	assert.Contains(t, html, "2. Shop B")
	assert.Contains(t, html, "L.polyline")

	// the polyline closes the loop: start appears at both ends
	first := strings.Index(html, "[11,77]")
	last := strings.LastIndex(html, "[11,77]")
	assert.Greater(t, last, first)
}

func TestRenderEmptyRoute(t *testing.T) {
	var buf bytes.Buffer
	route := &planner.Route{StartLat: 10.5, StartLon: 76.5}
	require.NoError(t, Render(&buf, "m", "d", route))

	html := buf.String()
	assert.Contains(t, html, "10.5")
	assert.NotContains(t, html, "Stop 1")
}
