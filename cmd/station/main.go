package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mobil-koeln/station-cli/internal/api"
	"github.com/mobil-koeln/station-cli/internal/cache"
	"github.com/mobil-koeln/station-cli/internal/config"
	"github.com/mobil-koeln/station-cli/internal/logging"
	"github.com/mobil-koeln/station-cli/internal/models"
	"github.com/mobil-koeln/station-cli/internal/output"
	"github.com/mobil-koeln/station-cli/internal/recent"
	"github.com/mobil-koeln/station-cli/internal/settings"
	"github.com/mobil-koeln/station-cli/internal/stations"
	"github.com/mobil-koeln/station-cli/internal/storage"
)

var version = "0.5.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "station",
	Short: "Browse Deutsche Bahn stations, boards and trains",
	Long: `station is a command-line interface for Deutsche Bahn (DB)
real-time transit information from the bahn.de API.

It remembers the stations you look at: the current station and the last
few distinct stations are kept in a local database and shown first in the
TUI and in 'station recent'.

Quick Start:
  1. Launch TUI:               station (or station tui)
  2. Search for a station:     station search "Frankfurt Hbf"
  3. Show departures:          station departures 8000105
  4. Show arrivals:            station arrivals 8000105
  5. Both boards at once:      station timetable 8000105
  6. Find nearby stations:     station nearby 50.107:8.663
  7. Follow a train:           station train <journey_id>
  8. Recently used stations:   station recent`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runTUI(cmd, args)
		}
		return cmd.Help()
	},
}

// Global flags
var (
	flagDate       string
	flagTime       string
	flagJSON       bool
	flagRawJSON    bool
	flagColor      string
	flagNoCache    bool
	flagConfigPath string
	flagVerbose    bool
)

// Board flags
var (
	flagNumVias   int
	flagModes     []string
	flagShowVia   bool
	flagLine      string
	flagDirection string
	flagJourney   bool
)

// Recent flags
var (
	flagWatch bool
	flagClear bool
)

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(nearbyCmd)
	rootCmd.AddCommand(departuresCmd)
	rootCmd.AddCommand(arrivalsCmd)
	rootCmd.AddCommand(timetableCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(tuiCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagDate, "date", "d", "", "Date (DD.MM.YYYY or YYYY-MM-DD)")
	pf.StringVarP(&flagTime, "time", "t", "", "Time (HH:MM)")
	pf.BoolVar(&flagJSON, "json", false, "Output as JSON")
	pf.BoolVar(&flagRawJSON, "raw-json", false, "Output raw API response")
	pf.StringVar(&flagColor, "color", "auto", "Color output: auto, always, never")
	pf.BoolVar(&flagNoCache, "no-cache", false, "Disable response caching")
	pf.StringVar(&flagConfigPath, "config", config.DefaultPath(), "Config file")
	pf.BoolVar(&flagVerbose, "verbose", false, "Debug logging to stderr")

	for _, c := range []*cobra.Command{departuresCmd, arrivalsCmd, timetableCmd} {
		c.Flags().IntVar(&flagNumVias, "vias", 5, "Number of intermediate stops to request")
		c.Flags().StringSliceVarP(&flagModes, "modes", "m", nil, "Filter by transport modes (ICE,EC_IC,REGIONAL,SBAHN,BUS,UBAHN,TRAM)")
		c.Flags().BoolVarP(&flagShowVia, "via", "v", false, "Show intermediate stops")
		c.Flags().StringVarP(&flagLine, "line", "l", "", "Filter by line (exact match)")
		c.Flags().StringVar(&flagDirection, "direction", "", "Filter by destination or origin (substring match)")
		c.Flags().BoolVarP(&flagJourney, "journey", "j", false, "Show journey IDs (use with 'station train <id>')")
	}

	recentCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "Keep running and redraw when the list changes")
	recentCmd.Flags().BoolVar(&flagClear, "clear", false, "Forget the current and recent stations")
}

// app holds everything a command needs. Close releases it.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *sqlx.DB
	store   *settings.SQLiteStore
	tracker *recent.Tracker
	cache   *cache.SQLiteCache
	names   *stations.Directory
	client  *api.Client
	colors  *output.Colors
}

// openApp loads the configuration and opens the database, the preference
// store, the recent tracker and the API client.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return nil, err
	}

	mode, err := output.ParseColorMode(flagColor)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if flagVerbose {
		level = "debug"
	}
	log, err := logging.New(level)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(ctx, cfg.DatabasePath)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		log:    log,
		db:     db,
		cache:  cache.NewSQLiteCache(db, cfg.GetCacheTTL(), log.Named("cache")),
		names:  stations.NewDirectory(db, log.Named("stations")),
		colors: output.NewColors(mode),
	}
	a.store = settings.NewSQLiteStore(db, cfg.DatabasePath, settings.WithLogger(log.Named("settings")))
	a.tracker = recent.New(a.store,
		recent.WithLimit(cfg.RecentLimit),
		recent.WithLogger(log.Named("recent")))

	if n, err := a.cache.Cleanup(); err != nil {
		log.Warn("cache cleanup failed", zap.Error(err))
	} else if n > 0 {
		log.Debug("dropped expired cache entries", zap.Int64("count", n))
	}

	opts := []api.ClientOption{
		api.WithTimeout(cfg.GetHTTPTimeout()),
		api.WithLogger(log.Named("api")),
	}
	if !flagNoCache {
		opts = append(opts, api.WithCache(a.cache))
	}
	a.client, err = api.NewClient(opts...)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	return a, nil
}

// Close stops the store watcher and closes the database.
func (a *app) Close() error {
	err := errors.Join(a.store.Close(), a.db.Close())
	_ = a.log.Sync()
	return err
}

// tableOptions returns render options marking the current and recent stations.
func (a *app) tableOptions(ctx context.Context) output.TableOptions {
	opts := output.TableOptions{
		Colors:    a.colors,
		ShowVia:   flagShowVia,
		ShowRoute: flagJourney,
	}
	if code, ok, err := a.tracker.CurrentStation(ctx); err == nil && ok {
		opts.Current = code
	}
	if list, err := a.tracker.Snapshot(ctx); err == nil {
		opts.Recent = list
	}
	return opts
}

// rememberStations stores station names for later lists of bare codes.
// A failure only costs names, so it is logged.
func (a *app) rememberStations(ctx context.Context, found []models.Station) {
	if err := a.names.Remember(ctx, found); err != nil {
		a.log.Warn("failed to remember station names", zap.Error(err))
	}
}

// stationNames resolves names for codes; unknown or unreadable ones are absent.
func (a *app) stationNames(ctx context.Context, codes []int) map[int]string {
	names, err := a.names.Names(ctx, codes)
	if err != nil {
		a.log.Warn("failed to read station names", zap.Error(err))
	}
	return names
}

// withApp runs fn with an open app and a context cancelled on interrupt.
// The context ends before the app is closed so that subscribers stop first.
func withApp(fn func(ctx context.Context, a *app) error) error {
	sigCtx, stop := output.SignalContext(context.Background())
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		cancel()
		_ = a.Close()
	}()

	return fn(ctx, a)
}
