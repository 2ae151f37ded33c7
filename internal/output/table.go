package output

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/mobil-koeln/station-cli/internal/models"
)

// TableOptions configures the table output
type TableOptions struct {
	Colors    *Colors
	ShowVia   bool
	ShowRoute bool

	// Current and Recent mark stations in station lists
	Current int
	Recent  []int
}

func (o TableOptions) colors() *Colors {
	if o.Colors == nil {
		return NewColors(ColorNever)
	}
	return o.Colors
}

// marker returns a one-character marker for a station code:
// "*" for the current station, "~" for other recent stations.
func (o TableOptions) marker(code int) string {
	c := o.colors()
	switch {
	case code != 0 && code == o.Current:
		return c.Current("*")
	case slices.Contains(o.Recent, code):
		return c.Recent("~")
	default:
		return " "
	}
}

// RenderStations renders stations as a formatted list
func RenderStations(w io.Writer, stations []models.Station, opts TableOptions) {
	if len(stations) == 0 {
		_, _ = fmt.Fprintln(w, "No stations found.")
		return
	}

	c := opts.colors()
	_, _ = fmt.Fprintln(w, c.Header("Found stations:"))
	_, _ = fmt.Fprintln(w)

	for _, s := range stations {
		name := c.Line(s.Name)
		if s.Distance > 0 {
			name += " " + c.Muted("(%s)", formatDistance(s.Distance))
		}
		_, _ = fmt.Fprintf(w, "%s %s\n", opts.marker(s.Code), name)
		if s.Code != 0 && s.IsStation() {
			_, _ = fmt.Fprintf(w, "    %s %d\n", c.Muted("Code:"), s.Code)
			_, _ = fmt.Fprintf(w, "    %s station departures %d\n", c.Muted("Use:"), s.Code)
		}
		_, _ = fmt.Fprintln(w)
	}
}

func formatDistance(m float64) string {
	if m < 1000 {
		return fmt.Sprintf("%.0f m", m)
	}
	return fmt.Sprintf("%.1f km", m/1000)
}

// RenderRecent renders the recent station list, most recent first.
// names may be nil; unknown codes are shown bare.
func RenderRecent(w io.Writer, codes []int, names map[int]string, opts TableOptions) {
	if len(codes) == 0 {
		_, _ = fmt.Fprintln(w, "No recent stations.")
		return
	}

	c := opts.colors()
	_, _ = fmt.Fprintln(w, c.Header("Recent stations:"))
	for i, code := range codes {
		line := fmt.Sprintf("%d. %s %s", i+1, opts.marker(code), c.Line("%d", code))
		if name, ok := names[code]; ok {
			line += "  " + name
		}
		_, _ = fmt.Fprintln(w, line)
	}
}

// RenderDepartures renders one board as a formatted table
func RenderDepartures(w io.Writer, departures []models.Departure, opts TableOptions) {
	if len(departures) == 0 {
		_, _ = fmt.Fprintln(w, "No departures found.")
		return
	}

	c := opts.colors()
	for _, dep := range departures {
		timeStr := "??:??"
		if dep.Time != nil {
			timeStr = dep.Time.Format("15:04")
		}

		line := dep.LineName()
		if len(line) > 10 {
			line = line[:10]
		}

		// Platform (fixed 7-char width: "Pl.XXX" or spaces)
		platform := dep.EffectivePlatform()
		platformStr := "       "
		if platform != "" {
			if len(platform) > 3 {
				platform = platform[:3]
			}
			platformStr = fmt.Sprintf("Pl.%-3s ", platform)
			if dep.PlatformChanged() {
				platformStr = c.DelayHigh("%s", platformStr)
			} else {
				platformStr = c.Platform("%s", platformStr)
			}
		}

		dest := dep.Destination
		if dep.IsCancelled {
			dest = c.Canceled("%s [CANCELED]", dest)
		}

		_, _ = fmt.Fprintf(w, "%s %s  %s  %s %s\n",
			c.Time(timeStr),
			c.FormatDelay(dep.Delay),
			c.Line("%-10s", line),
			platformStr,
			dest,
		)

		if opts.ShowVia && len(dep.Via) > 0 {
			_, _ = fmt.Fprintf(w, "%30s%s\n", "", c.Via("via %s", strings.Join(dep.Via, " - ")))
		}
		if opts.ShowRoute && dep.JourneyID != "" {
			_, _ = fmt.Fprintf(w, "%30s%s %s\n", "", c.Muted("Journey:"), c.Via(dep.JourneyID))
		}
	}
}

// RenderTimetable renders departures and arrivals under separate headers
func RenderTimetable(w io.Writer, departures, arrivals []models.Departure, opts TableOptions) {
	c := opts.colors()
	_, _ = fmt.Fprintln(w, c.Header("Departures"))
	RenderDepartures(w, departures, opts)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, c.Header("Arrivals"))
	if len(arrivals) == 0 {
		_, _ = fmt.Fprintln(w, "No arrivals found.")
		return
	}
	RenderDepartures(w, arrivals, opts)
}

// RenderTrain renders a train with all stops, marking where it is at now
func RenderTrain(w io.Writer, train *models.Train, now time.Time, opts TableOptions) {
	if train == nil {
		_, _ = fmt.Fprintln(w, "No train data found.")
		return
	}

	c := opts.colors()
	_, _ = fmt.Fprintf(w, "%s %s\n", c.Header("Train:"), c.Line(train.Name))
	if train.IsCancelled {
		_, _ = fmt.Fprintln(w, c.Canceled("Cancelled"))
	}
	for _, m := range train.Messages {
		_, _ = fmt.Fprintf(w, "%s %s\n", c.Muted("Note:"), m.Text)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, c.Header("Route:"))
	_, _ = fmt.Fprintln(w)

	currentIdx := train.CurrentStopIndex(now)
	last := len(train.Stops) - 1

	for i, stop := range train.Stops {
		arrStr := "     "
		if stop.SchedArr != nil && i != 0 {
			arrStr = stop.SchedArr.Format("15:04")
		}
		depStr := "     "
		if stop.SchedDep != nil && i != last {
			depStr = stop.SchedDep.Format("15:04")
		}

		platformStr := "        "
		if p := stop.EffectivePlatform(); p != "" {
			platformStr = fmt.Sprintf("Pl.%-4s ", p)
		}

		name := stop.Name
		if stop.IsCancelled {
			name = c.Canceled("%s [CANCELED]", name)
		} else if i == currentIdx {
			name = c.Current("%s", name)
		}

		symbol := "├"
		switch i {
		case 0:
			symbol = "┌"
		case last:
			symbol = "└"
		}

		indicator := " "
		if i == currentIdx {
			indicator = c.Current(">")
		}

		_, _ = fmt.Fprintf(w, "%s %s %s  %s %s  %s %s %s\n",
			indicator,
			c.Muted(symbol),
			c.Time(arrStr),
			c.Time(depStr),
			c.FormatDelay(stop.Delay()),
			c.Platform("%s", platformStr),
			name,
			c.Muted("%d", stop.StationCode),
		)
	}
}
