package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"garagelog/internal/activity"
	"garagelog/internal/core"
)

var bandColors = []*color.Color{
	color.New(color.FgHiBlack),            // 0: no activity
	color.New(color.FgGreen, color.Faint), // 1: under an hour
	color.New(color.FgGreen),              // 2: light day
	color.New(color.FgHiGreen),            // 3: solid day
	color.New(color.FgYellow),             // 4: heavy day
	color.New(color.FgHiYellow),           // 5: maxed out
}

const (
	cellGlyph    = "■"
	paddingGlyph = " "
)

var weekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// renderGrid prints the year heatmap, one terminal row per weekday.
// Out-of-year padding renders as blank space so it cannot be confused
// with a zero-activity day.
func renderGrid(sb *strings.Builder, grid *activity.YearGrid) {
	fmt.Fprintf(sb, "Activity %d\n\n", grid.Year)

	for dow := 0; dow < activity.DaysPerWeek; dow++ {
		fmt.Fprintf(sb, "%s ", weekdayLabels[dow])
		for week := 0; week < activity.GridWeeks; week++ {
			cell := grid.Weeks[week][dow]
			if !cell.InYear {
				sb.WriteString(paddingGlyph + " ")
				continue
			}
			sb.WriteString(bandColors[cell.Band].Sprint(cellGlyph) + " ")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nless ")
	for band := 0; band <= 5; band++ {
		sb.WriteString(bandColors[band].Sprint(cellGlyph) + " ")
	}
	sb.WriteString("more\n")
}

func renderStreaks(sb *strings.Builder, stats activity.StreakStats) {
	bold := color.New(color.Bold)
	fmt.Fprintf(sb, "Longest streak: %s days   Current streak: %s days\n",
		bold.Sprint(stats.Longest), bold.Sprint(stats.Current))
}

// renderDay prints the itemized receipt for one date.
func renderDay(sb *strings.Builder, summary *core.DaySummary) {
	bold := color.New(color.Bold)
	fmt.Fprintf(sb, "%s\n\n", bold.Sprint(summary.Date))

	if summary.Empty() {
		sb.WriteString("No work recorded.\n")
		return
	}

	for _, entry := range summary.Entries {
		fmt.Fprintf(sb, "  %-40s %5.1fh  %8s\n",
			entry.Description, entry.LaborHours, entry.TotalValue)
		for _, part := range entry.Parts {
			fmt.Fprintf(sb, "    %dx %-35s %8s\n", part.Quantity, part.Name, part.Price)
		}
	}

	if len(summary.Locations) > 0 {
		sb.WriteString("\nBy location:\n")
		for _, loc := range summary.Locations {
			fmt.Fprintf(sb, "  %-40s %5.1fh  %8s\n", loc.Name, loc.Hours, loc.Value)
		}
	}
	if len(summary.Vehicles) > 0 {
		sb.WriteString("\nVehicles: ")
		names := make([]string, len(summary.Vehicles))
		for i, v := range summary.Vehicles {
			names[i] = v.Name
		}
		sb.WriteString(strings.Join(names, ", ") + "\n")
	}

	fmt.Fprintf(sb, "\n  %-40s %5.1fh\n", "Total labor", summary.TotalLaborHours)
	fmt.Fprintf(sb, "  %-40s        %8s\n", "Labor value", summary.TotalLaborValue)
	fmt.Fprintf(sb, "  %-40s        %8s\n", "Materials", summary.TotalMaterialsCost)
	fmt.Fprintf(sb, "  %-40s        %8s\n", bold.Sprint("Earned"), bold.Sprint(summary.TotalEarned))
}
