package tui

import (
	"fmt"
	"strings"
	"time"
)

// renderTrainDetail renders the stops of the selected train.
func (m Model) renderTrainDetail(width, height int) string {
	title := "TRAIN"
	if m.train != nil {
		title += ": " + m.train.Name
	}
	titleStr := styleHeader.Render(title)

	if m.trainLoading {
		return titleStr + "\n" + styleLoading.Render(" Loading train...")
	}
	if m.trainErr != nil {
		return titleStr + "\n" + renderError(m.trainErr)
	}
	if m.train == nil {
		return titleStr + "\n" + styleMuted.Render(" Select a departure to view the train")
	}

	stops := m.train.Stops
	if len(stops) == 0 {
		return titleStr + "\n" + styleMuted.Render(" No stops")
	}

	currentIdx := m.train.CurrentStopIndex(time.Now())

	var b strings.Builder
	b.WriteString(titleStr)
	b.WriteString("\n")

	maxVisible := max(height-2, 1)
	start, end := visibleRange(m.trainScroll, len(stops), maxVisible)

	for i := start; i < end; i++ {
		stop := stops[i]
		isFirst := i == 0
		isCurrent := i == currentIdx

		symbol := "├"
		switch i {
		case 0:
			symbol = "┌"
		case len(stops) - 1:
			symbol = "└"
		}

		indicator := " "
		if isCurrent {
			indicator = ">"
		}

		// Arrival time, or departure time at the first stop
		timeStr := "     "
		if stop.Arr != nil && !isFirst {
			timeStr = stop.Arr.Format("15:04")
		} else if stop.Dep != nil && isFirst {
			timeStr = stop.Dep.Format("15:04")
		}

		platform := stop.EffectivePlatform()
		platformStr := "       "
		if platform != "" {
			if len(platform) > 3 {
				platform = platform[:3]
			}
			platformStr = fmt.Sprintf("Pl.%-3s ", platform)
		}

		fixedWidth := 1 + 1 + 1 + 1 + 5 + 1 + 4 + 2 + 7 // indicator+sp+symbol+sp+time+sp+delay+sp+platform
		name := truncate(stop.Name, width-fixedWidth-2)

		timeStyle, platformStyle, nameStyle := styleTime, stylePlatform, stylePlain
		switch {
		case stop.IsCancelled:
			timeStyle, platformStyle, nameStyle = styleCanceled, styleCanceled, styleCanceled
			name += " [X]"
		case isCurrent:
			timeStyle, platformStyle, nameStyle = styleCurrentStop, styleCurrentStop, styleCurrentStop
		}

		b.WriteString(fmt.Sprintf("%s %s %s %s  %s %s",
			styleCanceled.Render(indicator),
			styleMuted.Render(symbol),
			timeStyle.Render(timeStr),
			formatDelay(stop.Delay()),
			platformStyle.Render(platformStr),
			nameStyle.Render(name),
		))

		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}
