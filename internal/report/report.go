// Package report renders a planned route as the day-plan text handed to field
// reps, and builds the prompts used when an LLM formats the same data.
// Render is the fallback: whatever happens to the LLM, the report it would
// have produced can always be produced locally.
package report

import (
	"fmt"
	"strings"

	"routeplanner/internal/geo"
	"routeplanner/internal/planner"
)

// SystemPrompt pins the formatter role: the route is already computed, the
// model only lays it out.
const SystemPrompt = `You are a route planning assistant. Your task is to format a pre-calculated travel plan into a specific report format.
You will be given a list of stops in the correct order, along with travel details for each stop.
You must use the provided data to generate a report that follows the user's requested format EXACTLY.
Do not add any extra text, explanations, or summaries beyond what is requested in the format.`

// Render produces the canonical plain-text report for a route.
func Render(market, dealer string, route *planner.Route) string {
	var b strings.Builder

	fmt.Fprintf(&b, "- Market Name: %s\n", market)
	fmt.Fprintf(&b, "- Dealer Name: %s\n", dealer)

	for i, stop := range route.Stops {
		label := "Next Stop"
		if i == 0 {
			label = "First Stop"
		}
		fmt.Fprintf(&b, "%d) %s\n", i+1, label)
		fmt.Fprintf(&b, "   Shop Name: %s\n", stop.Name)
		fmt.Fprintf(&b, "   Last Visit: %s\n", stop.LastVisit)
		fmt.Fprintf(&b, "   Distance from Previous: %.2f km\n", stop.LegKM)
		fmt.Fprintf(&b, "   Travel Time (with traffic): %.0f min\n\n", stop.TravelMinutes)
	}

	b.WriteString(summary(route))
	return b.String()
}

// BuildUserPrompt serializes the route data and requested format into the
// user message for the LLM formatter.
func BuildUserPrompt(market, dealer string, route *planner.Route) string {
	var stops strings.Builder
	for i, stop := range route.Stops {
		fmt.Fprintf(&stops, "Stop %d:\n", i+1)
		fmt.Fprintf(&stops, "  Shop Name: %s\n", stop.Name)
		fmt.Fprintf(&stops, "  Last Visit: %s\n", stop.LastVisit)
		fmt.Fprintf(&stops, "  Distance from Previous: %.2f km\n", stop.LegKM)
		fmt.Fprintf(&stops, "  Travel Time: %.0f min\n\n", stop.TravelMinutes)
	}

	return fmt.Sprintf(`**TASK:**
Format the output EXACTLY like this, using the data provided below.

**FORMAT:**
- Market Name: %s
- Dealer Name: %s
1) First Stop
   Shop Name: [Shop Name]
   Last Visit: [Date]
   Distance from Previous: [km]
   Travel Time (with traffic): [min]

2) Next Stop
   Shop Name: [Shop Name]
   Last Visit: [Date]
   Distance from Previous: [km]
   Travel Time (with traffic): [min]

[Continue for all stops]

At the end, output:
- Total Distance: [km]
- Total Travel Time (travel only, with traffic): [hr min]
- Total Visit Time: [hr min]
- Break Time: [hr min]
- Total Workday Time: [hr min]

- - -

**ROUTE DATA:**
%s
**SUMMARY TOTALS:**
%s
Do not add any explanation or extra text.`, market, dealer, stops.String(), summary(route))
}

func summary(route *planner.Route) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- Total Distance: %.2f km\n", route.TotalKM)
	fmt.Fprintf(&b, "- Total Travel Time (travel only, with traffic): %s\n", geo.FormatMinutes(route.TravelMinutes))
	fmt.Fprintf(&b, "- Total Visit Time: %s\n", geo.FormatMinutes(route.VisitMinutes))
	fmt.Fprintf(&b, "- Break Time: %s\n", geo.FormatMinutes(route.BreakMinutes))
	fmt.Fprintf(&b, "- Total Workday Time: %s\n", geo.FormatMinutes(route.TotalMinutes))
	return b.String()
}
