package api

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/mobil-koeln/station-cli/internal/logging"
	"github.com/mobil-koeln/station-cli/internal/models"
)

const (
	defaultTimeout = 10 * time.Second
	defaultNumVias = 5
	searchLimit    = 10
	nearbyRadius   = 9999
	nearbyMaxNo    = 100
)

// browserProfile holds a consistent browser identity for a client session.
type browserProfile struct {
	userAgent string
	secChUA   string
	mobile    bool
}

var userAgentTemplates = []struct {
	ua     string
	major  int // Chrome major version for sec-ch-ua
	mobile bool
}{
	{"Mozilla/5.0 (Linux; Android 14; SM-S928B/DS) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.XXXX.YYY Mobile Safari/537.36", 120, true},
	{"Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.XXXX.YYY Mobile Safari/537.36", 112, true},
	{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.XXXX.YYY Safari/537.36", 131, false},
	{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.XXXX.YYY Safari/537.36", 129, false},
}

// cryptoRandIntn returns a random integer [0, n) using crypto/rand
func cryptoRandIntn(n int) int {
	nBig, err := crand.Int(crand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return int(time.Now().UnixNano() % int64(n))
	}
	return int(nBig.Int64())
}

// newBrowserProfile generates a randomized but internally-consistent browser identity.
func newBrowserProfile() browserProfile {
	tmpl := userAgentTemplates[cryptoRandIntn(len(userAgentTemplates))]
	ua := strings.NewReplacer(
		"XXXX", strconv.Itoa(cryptoRandIntn(1000)),
		"YYY", strconv.Itoa(cryptoRandIntn(100)),
	).Replace(tmpl.ua)

	return browserProfile{
		userAgent: ua,
		secChUA:   fmt.Sprintf(`"Chromium";v="%d", "Not?A_Brand";v="24", "Google Chrome";v="%d"`, tmpl.major, tmpl.major),
		mobile:    tmpl.mobile,
	}
}

// Cache interface for caching HTTP responses
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
}

// Client is the API client for bahn.de
type Client struct {
	httpClient *http.Client
	baseURL    string
	timezone   *time.Location
	cache      Cache
	browser    browserProfile
	log        *zap.Logger

	// in-flight requests for the same URL share one round trip
	inflight singleflight.Group
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithCache enables caching with the provided cache implementation
func WithCache(cache Cache) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithBaseURL overrides the API base URL
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithLogger sets the client logger
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a new API client
func NewClient(opts ...ClientOption) (*Client, error) {
	tz, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Jar:     jar,
		},
		baseURL:  BaseURL,
		timezone: tz,
		browser:  newBrowserProfile(),
	}

	for _, opt := range opts {
		opt(c)
	}
	c.log = logging.OrNop(c.log)

	return c, nil
}

// Timezone returns the client's timezone
func (c *Client) Timezone() *time.Location {
	return c.timezone
}

// StationBoardRequest contains parameters for a departure/arrival query
type StationBoardRequest struct {
	Code           int       // Station code / EVA number (required)
	StationID      string    // Hafas station ID; derived from Code when empty
	DateTime       time.Time // Query time (defaults to now)
	NumVias        int       // Number of via stations (default: 5)
	ModesOfTransit []string  // Filter by transport mode (default: all)
}

// Timetable holds both boards of a station
type Timetable struct {
	StationCode int                `json:"stationCode"`
	Departures  []models.Departure `json:"departures"`
	Arrivals    []models.Departure `json:"arrivals"`
}

// GetDepartures fetches departures for a station
func (c *Client) GetDepartures(ctx context.Context, req StationBoardRequest) ([]models.Departure, error) {
	return c.getBoard(ctx, req, models.BoardDepartures)
}

// GetDeparturesRaw fetches departures and returns raw JSON
func (c *Client) GetDeparturesRaw(ctx context.Context, req StationBoardRequest) (json.RawMessage, error) {
	return c.getStationBoardRaw(ctx, req, EndpointDepartures)
}

// GetArrivals fetches arrivals for a station
func (c *Client) GetArrivals(ctx context.Context, req StationBoardRequest) ([]models.Departure, error) {
	return c.getBoard(ctx, req, models.BoardArrivals)
}

// GetArrivalsRaw fetches arrivals and returns raw JSON
func (c *Client) GetArrivalsRaw(ctx context.Context, req StationBoardRequest) (json.RawMessage, error) {
	return c.getStationBoardRaw(ctx, req, EndpointArrivals)
}

// GetTimetable fetches departures and arrivals concurrently
func (c *Client) GetTimetable(ctx context.Context, req StationBoardRequest) (*Timetable, error) {
	tt := &Timetable{StationCode: req.Code}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps, err := c.GetDepartures(gctx, req)
		tt.Departures = deps
		return err
	})
	g.Go(func() error {
		arrs, err := c.GetArrivals(gctx, req)
		tt.Arrivals = arrs
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tt, nil
}

// RawTimetable holds the unparsed responses of both boards of a station
type RawTimetable struct {
	StationCode int             `json:"stationCode"`
	Departures  json.RawMessage `json:"departures"`
	Arrivals    json.RawMessage `json:"arrivals"`
}

// GetTimetableRaw fetches both boards concurrently and returns raw JSON
func (c *Client) GetTimetableRaw(ctx context.Context, req StationBoardRequest) (*RawTimetable, error) {
	tt := &RawTimetable{StationCode: req.Code}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := c.GetDeparturesRaw(gctx, req)
		tt.Departures = raw
		return err
	})
	g.Go(func() error {
		raw, err := c.GetArrivalsRaw(gctx, req)
		tt.Arrivals = raw
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tt, nil
}

func (c *Client) getBoard(ctx context.Context, req StationBoardRequest, kind models.BoardKind) ([]models.Departure, error) {
	endpoint := EndpointDepartures
	if kind == models.BoardArrivals {
		endpoint = EndpointArrivals
	}

	body, err := c.getStationBoardRaw(ctx, req, endpoint)
	if err != nil {
		return nil, err
	}

	var resp models.DeparturesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", kind, err)
	}
	return resp.ToDepartures(kind, c.timezone), nil
}

// getStationBoardRaw is a helper for fetching departures/arrivals
func (c *Client) getStationBoardRaw(ctx context.Context, req StationBoardRequest, endpoint string) (json.RawMessage, error) {
	if req.Code <= 0 {
		return nil, ErrMissingField("station code")
	}

	dt := req.DateTime
	if dt.IsZero() {
		dt = time.Now().In(c.timezone)
	}

	stationID := req.StationID
	if stationID == "" {
		stationID = HafasStationID(req.Code)
	}

	numVias := req.NumVias
	if numVias == 0 {
		numVias = defaultNumVias
	}

	params := url.Values{}
	params.Set("datum", dt.Format("2006-01-02"))
	params.Set("zeit", dt.Format("15:04:00"))
	params.Set("ortExtId", strconv.Itoa(req.Code))
	params.Set("ortId", stationID)
	params.Set("mitVias", "true")
	params.Set("maxVias", strconv.Itoa(numVias))

	mots := req.ModesOfTransit
	if len(mots) == 0 {
		mots = ModesOfTransit
	}
	for _, mot := range mots {
		params.Add("verkehrsmittel[]", mot)
	}

	return c.doRequest(ctx, c.baseURL+endpoint+"?"+params.Encode())
}

// HafasStationID builds the minimal Hafas location ID accepted by the board
// endpoints for a station code.
func HafasStationID(code int) string {
	return fmt.Sprintf("A=1@L=%d@", code)
}

// NearbyRequest contains parameters for a nearby search
type NearbyRequest struct {
	Latitude  float64 // Latitude (required)
	Longitude float64 // Longitude (required)
	Radius    int     // Search radius in meters (default: 9999)
	MaxNo     int     // Maximum number of results (default: 100)
}

// Validate checks the coordinates
func (r NearbyRequest) Validate() error {
	if r.Latitude < -90 || r.Latitude > 90 {
		return ErrInvalidValue("latitude", r.Latitude)
	}
	if r.Longitude < -180 || r.Longitude > 180 {
		return ErrInvalidValue("longitude", r.Longitude)
	}
	return nil
}

// NearbyStations returns stations near a location, nearest first
func (c *Client) NearbyStations(ctx context.Context, req NearbyRequest) ([]models.Station, error) {
	body, err := c.NearbyStationsRaw(ctx, req)
	if err != nil {
		return nil, err
	}

	stations, err := parseStations(body, "nearby")
	if err != nil {
		return nil, err
	}
	models.SortByDistance(stations, req.Latitude, req.Longitude)
	return stations, nil
}

// NearbyStationsRaw searches for nearby stations and returns raw JSON
func (c *Client) NearbyStationsRaw(ctx context.Context, req NearbyRequest) (json.RawMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	radius := req.Radius
	if radius == 0 {
		radius = nearbyRadius
	}
	maxNo := req.MaxNo
	if maxNo == 0 {
		maxNo = nearbyMaxNo
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(req.Latitude, 'f', 6, 64))
	params.Set("long", strconv.FormatFloat(req.Longitude, 'f', 6, 64))
	params.Set("radius", strconv.Itoa(radius))
	params.Set("maxNo", strconv.Itoa(maxNo))

	return c.doRequest(ctx, c.baseURL+EndpointNearby+"?"+params.Encode())
}

// SearchStations searches for stations by name
func (c *Client) SearchStations(ctx context.Context, query string) ([]models.Station, error) {
	body, err := c.SearchStationsRaw(ctx, query)
	if err != nil {
		return nil, err
	}
	return parseStations(body, "search")
}

// SearchStationsRaw searches for stations and returns raw JSON
func (c *Client) SearchStationsRaw(ctx context.Context, query string) (json.RawMessage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrMissingField("query")
	}

	params := url.Values{}
	params.Set("suchbegriff", query)
	params.Set("typ", "ALL")
	params.Set("limit", strconv.Itoa(searchLimit))

	return c.doRequest(ctx, c.baseURL+EndpointStations+"?"+params.Encode())
}

func parseStations(body []byte, what string) ([]models.Station, error) {
	var resp []models.StationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", what, err)
	}

	stations := make([]models.Station, 0, len(resp))
	for i := range resp {
		stations = append(stations, resp[i].ToStation())
	}
	return stations, nil
}

// GetTrain fetches train details by journey ID
func (c *Client) GetTrain(ctx context.Context, journeyID string) (*models.Train, error) {
	body, err := c.GetTrainRaw(ctx, journeyID)
	if err != nil {
		return nil, err
	}

	var resp models.TrainResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse train response: %w", err)
	}
	return resp.ToTrain(journeyID, c.timezone), nil
}

// GetTrainRaw fetches train details and returns raw JSON
func (c *Client) GetTrainRaw(ctx context.Context, journeyID string) (json.RawMessage, error) {
	if journeyID == "" {
		return nil, ErrMissingField("journey id")
	}

	params := url.Values{}
	params.Set("journeyId", journeyID)
	params.Set("poly", "false")

	return c.doRequest(ctx, c.baseURL+EndpointTrain+"?"+params.Encode())
}

// doRequest performs an HTTP GET with caching. Concurrent calls for the same
// URL are collapsed into one request whose result every caller receives.
// The shared request is detached from the caller's cancellation and bounded
// by the HTTP client timeout; a caller whose ctx ends stops waiting without
// failing the others.
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	if c.cache != nil {
		if data, ok := c.cache.Get(reqURL); ok {
			return data, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	flight := c.inflight.DoChan(reqURL, func() (interface{}, error) {
		return c.fetch(context.WithoutCancel(ctx), reqURL)
	})

	select {
	case res := <-flight:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.log.Debug("shared in-flight request", zap.String("url", reqURL))
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}
}

func (c *Client) fetch(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	bp := c.browser
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Origin", "https://www.bahn.de")
	req.Header.Set("Referer", "https://www.bahn.de/buchung/fahrplan/suche")
	req.Header.Set("User-Agent", bp.userAgent)
	req.Header.Set("Sec-Fetch-Dest", "empty")
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	req.Header.Set("sec-ch-ua", bp.secChUA)
	if bp.mobile {
		req.Header.Set("sec-ch-ua-mobile", "?1")
		req.Header.Set("sec-ch-ua-platform", `"Android"`)
	} else {
		req.Header.Set("sec-ch-ua-mobile", "?0")
		req.Header.Set("sec-ch-ua-platform", `"Windows"`)
	}
	correlationID := uuid.NewString() + "_" + uuid.NewString()
	req.Header.Set("x-correlation-id", correlationID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	endpoint := extractEndpoint(reqURL)
	c.log.Debug("api request",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("correlation_id", correlationID))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if msg := errorMessage(body); msg != "" {
			return nil, NewAPIErrorWithMessage(resp.StatusCode, endpoint, msg)
		}
		return nil, NewAPIError(resp.StatusCode, resp.Status, endpoint)
	}

	if c.cache != nil {
		if err := c.cache.Set(reqURL, body); err != nil {
			c.log.Warn("failed to cache response", zap.String("endpoint", endpoint), zap.Error(err))
		}
	}

	return body, nil
}

// errorMessage extracts the message from an API error body, if any
func errorMessage(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	return e.Error.Message
}

// extractEndpoint extracts the endpoint path from a full URL
func extractEndpoint(fullURL string) string {
	u, err := url.Parse(fullURL)
	if err != nil {
		return fullURL
	}
	return u.Path
}
