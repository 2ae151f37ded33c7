package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mobil-koeln/station-cli/internal/api"
	"github.com/mobil-koeln/station-cli/internal/models"
	"github.com/mobil-koeln/station-cli/internal/output"
	"github.com/mobil-koeln/station-cli/internal/tui"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search for stations by name",
	Long: `Search for stations by name. Current (*) and recent (~) stations
are marked in the result list.

Example:
  station search "Frankfurt Hbf"
  station search München`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var nearbyCmd = &cobra.Command{
	Use:   "nearby <lat>:<lon>",
	Short: "Search for stations near a location",
	Long: `Search for stations near a geographic location, closest first.

The location must be specified as latitude:longitude in decimal degrees.

Example:
  station nearby 50.107:8.663
  station nearby 52.520:13.405`,
	Args: cobra.ExactArgs(1),
	RunE: runNearby,
}

var departuresCmd = &cobra.Command{
	Use:   "departures <code>",
	Short: "Show departures at a station",
	Long: `Show upcoming departures at a station and make it the current station.

Use 'station search <name>' to find station codes.

Available transport modes for --modes:
  ICE, EC_IC, IR, REGIONAL, SBAHN, BUS, SCHIFF, UBAHN, TRAM, ANRUFPFLICHTIG

Examples:
  station departures 8000105
  station departures 8000105 --modes ICE,EC_IC
  station departures 8000105 --line S1 --journey
  station departures 8000105 -d 24.12.2025 -t 18:00`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBoard(args[0], models.BoardDepartures)
	},
}

var arrivalsCmd = &cobra.Command{
	Use:   "arrivals <code>",
	Short: "Show arrivals at a station",
	Long: `Show upcoming arrivals at a station and make it the current station.

Examples:
  station arrivals 8000105
  station arrivals 8000105 --direction Berlin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBoard(args[0], models.BoardArrivals)
	},
}

var timetableCmd = &cobra.Command{
	Use:   "timetable <code>",
	Short: "Show departures and arrivals at a station",
	Long: `Fetch both boards of a station concurrently and make it the current
station.

Example:
  station timetable 8000105`,
	Args: cobra.ExactArgs(1),
	RunE: runTimetable,
}

var trainCmd = &cobra.Command{
	Use:   "train <journey_id>",
	Short: "Show all stops of a train",
	Long: `Show the route of a train with real-time delays.

The journey ID can be obtained from the board output using --journey or --json.

Example:
  station train "2|#VN#1#ST#..."`,
	Args: cobra.ExactArgs(1),
	RunE: runTrain,
}

var selectCmd = &cobra.Command{
	Use:   "select <code>",
	Short: "Make a station the current station",
	Long: `Record a station as the current station without fetching its board.
The station moves to the front of the recent list.

Example:
  station select 8000105`,
	Args: cobra.ExactArgs(1),
	RunE: runSelect,
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show recently used stations",
	Long: `Show the recently used stations, most recent first. The first entry
is the current station.

Flags:
  --watch, -w   Keep running and redraw whenever the list changes,
                including changes made by other station processes
  --clear       Forget the current and recent stations`,
	Args: cobra.NoArgs,
	RunE: runRecent,
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the response cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached API responses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			if err := a.cache.Clear(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, "Cache cleared.")
			return nil
		})
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive full-screen TUI",
	Long: `Launch an interactive full-screen terminal UI for browsing
stations, boards and trains. With an empty search box the station panel
lists the recent stations.

Keyboard:
  Tab            Cycle focus between panels
  j/k or arrows  Navigate lists
  Enter          Select / confirm (on an empty search: recent list)
  Esc            Go back
  /              Jump to search
  q              Quit`,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		model := tui.New(ctx, a.client, a.tracker, a.names)
		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	})
}

func runSearch(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		if flagRawJSON {
			raw, err := a.client.SearchStationsRaw(ctx, args[0])
			if err != nil {
				return err
			}
			return printPrettyJSON(os.Stdout, raw)
		}

		stations, err := a.client.SearchStations(ctx, args[0])
		if err != nil {
			return err
		}
		a.rememberStations(ctx, stations)
		if flagJSON {
			return printJSON(os.Stdout, stations)
		}
		output.RenderStations(os.Stdout, stations, a.tableOptions(ctx))
		return nil
	})
}

func runNearby(cmd *cobra.Command, args []string) error {
	req, err := parseCoordinates(args[0])
	if err != nil {
		return err
	}

	return withApp(func(ctx context.Context, a *app) error {
		if flagRawJSON {
			raw, err := a.client.NearbyStationsRaw(ctx, req)
			if err != nil {
				return err
			}
			return printPrettyJSON(os.Stdout, raw)
		}

		stations, err := a.client.NearbyStations(ctx, req)
		if err != nil {
			return err
		}
		a.rememberStations(ctx, stations)
		if flagJSON {
			return printJSON(os.Stdout, stations)
		}
		output.RenderStations(os.Stdout, stations, a.tableOptions(ctx))
		return nil
	})
}

// boardRequest builds a board request from the board flags
func boardRequest(code int, loc *time.Location) (api.StationBoardRequest, error) {
	req := api.StationBoardRequest{
		Code:           code,
		NumVias:        flagNumVias,
		ModesOfTransit: flagModes,
	}
	if flagDate != "" || flagTime != "" {
		dt, err := parseDateTime(flagDate, flagTime, time.Now().In(loc))
		if err != nil {
			return req, err
		}
		req.DateTime = dt
	}
	return req, nil
}

// recordStation makes code the current station. A failure is reported but
// does not fail the command.
func (a *app) recordStation(ctx context.Context, code int) {
	if err := a.tracker.SetCurrentStation(ctx, code); err != nil {
		a.log.Warn("failed to record current station", zap.Int("code", code), zap.Error(err))
	}
}

func runBoard(arg string, kind models.BoardKind) error {
	code, err := parseStationCode(arg)
	if err != nil {
		return err
	}

	return withApp(func(ctx context.Context, a *app) error {
		req, err := boardRequest(code, a.client.Timezone())
		if err != nil {
			return err
		}

		if flagRawJSON {
			fetch := a.client.GetDeparturesRaw
			if kind == models.BoardArrivals {
				fetch = a.client.GetArrivalsRaw
			}
			raw, err := fetch(ctx, req)
			if err != nil {
				return err
			}
			a.recordStation(ctx, code)
			return printPrettyJSON(os.Stdout, raw)
		}

		fetch := a.client.GetDepartures
		if kind == models.BoardArrivals {
			fetch = a.client.GetArrivals
		}
		deps, err := fetch(ctx, req)
		if err != nil {
			return err
		}
		a.recordStation(ctx, code)

		deps = filterDepartures(deps, flagLine, flagDirection)
		if flagJSON {
			return printJSON(os.Stdout, deps)
		}
		output.RenderDepartures(os.Stdout, deps, a.tableOptions(ctx))
		return nil
	})
}

func runTimetable(cmd *cobra.Command, args []string) error {
	code, err := parseStationCode(args[0])
	if err != nil {
		return err
	}

	return withApp(func(ctx context.Context, a *app) error {
		req, err := boardRequest(code, a.client.Timezone())
		if err != nil {
			return err
		}

		if flagRawJSON {
			raw, err := a.client.GetTimetableRaw(ctx, req)
			if err != nil {
				return err
			}
			a.recordStation(ctx, code)
			return printJSON(os.Stdout, raw)
		}

		tt, err := a.client.GetTimetable(ctx, req)
		if err != nil {
			return err
		}
		a.recordStation(ctx, code)

		tt.Departures = filterDepartures(tt.Departures, flagLine, flagDirection)
		tt.Arrivals = filterDepartures(tt.Arrivals, flagLine, flagDirection)
		if flagJSON {
			return printJSON(os.Stdout, tt)
		}
		output.RenderTimetable(os.Stdout, tt.Departures, tt.Arrivals, a.tableOptions(ctx))
		return nil
	})
}

func runTrain(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		if flagRawJSON {
			raw, err := a.client.GetTrainRaw(ctx, args[0])
			if err != nil {
				return err
			}
			return printPrettyJSON(os.Stdout, raw)
		}

		train, err := a.client.GetTrain(ctx, args[0])
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(os.Stdout, train)
		}
		output.RenderTrain(os.Stdout, train, time.Now(), a.tableOptions(ctx))
		return nil
	})
}

func runSelect(cmd *cobra.Command, args []string) error {
	code, err := parseStationCode(args[0])
	if err != nil {
		return err
	}

	return withApp(func(ctx context.Context, a *app) error {
		if err := a.tracker.SetCurrentStation(ctx, code); err != nil {
			return fmt.Errorf("failed to record current station: %w", err)
		}
		list, err := a.tracker.Snapshot(ctx)
		if err != nil {
			return err
		}
		return renderRecent(ctx, os.Stdout, a, list)
	})
}

func runRecent(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		if flagClear {
			if err := a.tracker.Clear(ctx); err != nil {
				return fmt.Errorf("failed to clear recent stations: %w", err)
			}
			_, _ = fmt.Fprintln(os.Stdout, "Recent stations cleared.")
			return nil
		}

		if !flagWatch {
			list, err := a.tracker.Snapshot(ctx)
			if err != nil {
				return err
			}
			return renderRecent(ctx, os.Stdout, a, list)
		}

		updates := a.tracker.RecentStations(ctx)
		if flagJSON {
			for list := range updates {
				if err := printJSON(os.Stdout, list); err != nil {
					return err
				}
			}
			return nil
		}

		output.Watch(os.Stdout, updates, func(w io.Writer, list []int) {
			_, _ = fmt.Fprintf(w, "Last update: %s | Press Ctrl+C to exit\n\n", time.Now().Format("15:04:05"))
			_ = renderRecent(ctx, w, a, list)
		})
		output.ClearScreen(os.Stdout)
		_, _ = fmt.Fprintln(os.Stdout, "Watch mode ended.")
		return nil
	})
}

// renderRecent prints a recent list by name; its head is the current station.
func renderRecent(ctx context.Context, w io.Writer, a *app, list []int) error {
	if flagJSON {
		return printJSON(w, list)
	}
	opts := output.TableOptions{Colors: a.colors, Recent: list}
	if len(list) > 0 {
		opts.Current = list[0]
	}
	output.RenderRecent(w, list, a.stationNames(ctx, list), opts)
	return nil
}
