// Package maps renders a planned route as a self-contained Leaflet HTML page.
// The page is stored as an object and served as-is; all Go does is template
// the marker and polyline data into it.
package maps

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"routeplanner/internal/model"
	"routeplanner/internal/planner"
)

const startMarkerName = "Salesperson Start/End"

// Points flattens a route into the marker list returned to API clients:
// the start sentinel first, then every stop in visit order.
func Points(route *planner.Route) []model.MapPoint {
	points := make([]model.MapPoint, 0, len(route.Stops)+1)
	points = append(points, model.MapPoint{
		Name: startMarkerName,
		Lat:  route.StartLat,
		Lng:  route.StartLon,
		Type: "start",
	})
	for _, s := range route.Stops {
		points = append(points, model.MapPoint{
			Name: s.Name,
			Lat:  s.Lat,
			Lng:  s.Lon,
			Type: "shop",
		})
	}
	return points
}

type marker struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Tooltip string  `json:"tooltip"`
	Popup   string  `json:"popup"`
	Start   bool    `json:"start"`
}

type pageData struct {
	Title     string
	CenterLat float64
	CenterLng float64
	Markers   template.JS
	Line      template.JS
}

// Render writes the route map page. The polyline starts and ends at the
// salesperson position so the day reads as a loop.
func Render(w io.Writer, market, dealer string, route *planner.Route) error {
	markers := []marker{{
		Lat:     route.StartLat,
		Lng:     route.StartLon,
		Tooltip: startMarkerName,
		Start:   true,
	}}
	line := [][2]float64{{route.StartLat, route.StartLon}}

	for i, s := range route.Stops {
		markers = append(markers, marker{
			Lat:     s.Lat,
			Lng:     s.Lon,
			Tooltip: fmt.Sprintf("%d. %s", i+1, s.Name),
			Popup:   fmt.Sprintf("<b>Stop %d</b><br>Shop: %s<br>Last Visit: %s", i+1, s.Name, s.LastVisit),
		})
		line = append(line, [2]float64{s.Lat, s.Lon})
	}
	line = append(line, [2]float64{route.StartLat, route.StartLon})

	markersJSON, err := json.Marshal(markers)
	if err != nil {
		return fmt.Errorf("marshal markers: %w", err)
	}
	lineJSON, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("marshal polyline: %w", err)
	}

	return pageTmpl.Execute(w, pageData{
		Title:     fmt.Sprintf("Route: %s / %s", market, dealer),
		CenterLat: route.StartLat,
		CenterLng: route.StartLon,
		Markers:   template.JS(markersJSON),
		Line:      template.JS(lineJSON),
	})
}

var pageTmpl = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css" />
  <style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
  <div id="map"></div>
  <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
  <script>
    var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLng}}], 12);
    L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
      attribution: '&copy; OpenStreetMap contributors'
    }).addTo(map);

    var markers = {{.Markers}};
    markers.forEach(function (m) {
      var marker = L.marker([m.lat, m.lng]).addTo(map);
      marker.bindTooltip(m.tooltip);
      if (m.popup) {
        marker.bindPopup(m.popup);
      }
    });

    L.polyline({{.Line}}, { color: 'blue', weight: 4, opacity: 0.7 }).addTo(map);
  </script>
</body>
</html>
`))
