package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"cloudeng.io/logging/ctxlog"

	"github.com/thurmanmarka/sunglide"
	"github.com/thurmanmarka/sunglide/internal/config"
)

func main() {
	log.SetFlags(0)

	// If no args or first arg starts with "-", run rise/set mode.
	// Otherwise treat the first arg as a subcommand.
	if len(os.Args) < 2 || strings.HasPrefix(os.Args[1], "-") {
		runRiseSet(os.Args[1:])
		return
	}

	switch os.Args[1] {
	case "riseset":
		runRiseSet(os.Args[2:])
	case "around":
		runAround(os.Args[2:], false)
	case "search":
		runAround(os.Args[2:], true)
	case "brightness":
		runBrightness(os.Args[2:])
	case "simulate":
		runSimulate(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `sunglide – sunrise, sunset and brightness

Usage:
  sunglide [flags]              # sunrise/sunset for a date (default mode)
  sunglide around [flags]       # visibility bracket around an instant
  sunglide search [flags]       # the same, searching a solar position library
  sunglide brightness [flags]   # brightness level and expiry at an instant
  sunglide simulate [flags]     # follow brightness expiries over a period

Every subcommand accepts -config pointing to a YAML file; flags given on the
command line override it. Run a subcommand with -h for its flags.
`)
}

// ---------------------
// Shared flags
// ---------------------

type commonFlags struct {
	fs         *flag.FlagSet
	configPath *string
	lat        *float64
	lon        *float64
	tz         *string
}

func newCommonFlags(name string) *commonFlags {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return &commonFlags{
		fs:         fs,
		configPath: fs.String("config", "", "path to a YAML configuration file"),
		lat:        fs.Float64("lat", 0, "latitude in degrees (north positive)"),
		lon:        fs.Float64("lon", 0, "longitude in degrees (east positive, west negative)"),
		tz:         fs.String("tz", "", "IANA time zone used to read and print times (default from config, else UTC)"),
	}
}

// parse parses args and merges the flags that were set into the loaded
// configuration.
func (c *commonFlags) parse(args []string) (*config.Config, *time.Location) {
	if err := c.fs.Parse(args); err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}
	cfg, err := config.Load(*c.configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	c.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lat":
			cfg.Location.Latitude = *c.lat
		case "lon":
			cfg.Location.Longitude = *c.lon
		case "tz":
			cfg.Location.Timezone = *c.tz
		}
	})
	if cfg.Location.Latitude == 0 && cfg.Location.Longitude == 0 {
		log.Println("warning: lat=0 lon=0 (Gulf of Guinea). Use -lat and -lon to set a real location.")
	}
	loc, err := time.LoadLocation(cfg.Location.Timezone)
	if err != nil {
		log.Fatalf("invalid time zone %q: %v", cfg.Location.Timezone, err)
	}
	return cfg, loc
}

func (c *commonFlags) isSet(name string) bool {
	set := false
	c.fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func coordinates(cfg *config.Config) sunglide.Coordinates {
	return sunglide.Coordinates{
		Lat: cfg.Location.Latitude,
		Lon: cfg.Location.Longitude,
		// Elevation reserved for future use
	}
}

func newCalculator(cfg *config.Config) *sunglide.Calculator {
	backend := sunglide.BackendNOAA
	if strings.EqualFold(cfg.Backend.Ephemeris, "meeus") {
		backend = sunglide.BackendMeeus
	}
	opts := []sunglide.Option{sunglide.WithBackend(backend)}
	if cfg.Backend.MaxPolarDays > 0 {
		opts = append(opts, sunglide.WithMaxPolarDays(cfg.Backend.MaxPolarDays))
	}
	return sunglide.NewCalculator(opts...)
}

func newOracle(name string, coords sunglide.Coordinates) sunglide.ElevationOracle {
	switch strings.ToLower(name) {
	case "gosunrise":
		return sunglide.SunriseElevation(coords)
	case "suncalc":
		return sunglide.SunCalcElevation(coords)
	default:
		return sunglide.ApproxElevation(coords)
	}
}

// resolver returns the function used to compute visibility brackets for the
// configured backend.
func resolver(cfg *config.Config) func(time.Time) (sunglide.Visibility, error) {
	coords := coordinates(cfg)
	if strings.EqualFold(cfg.Backend.Mode, "search") {
		oracle := newOracle(cfg.Backend.Oracle, coords)
		var opts []sunglide.SearchOption
		if cfg.Search.Step > 0 {
			opts = append(opts, sunglide.WithStep(cfg.Search.Step))
		}
		if cfg.Search.MaxEvaluations > 0 {
			opts = append(opts, sunglide.WithMaxEvaluations(cfg.Search.MaxEvaluations))
		}
		return func(t time.Time) (sunglide.Visibility, error) {
			return sunglide.SearchAround(oracle, coords, t, opts...)
		}
	}
	calc := newCalculator(cfg)
	return func(t time.Time) (sunglide.Visibility, error) {
		return calc.Around(coords, t)
	}
}

func parseTime(s string, loc *time.Location) time.Time {
	if s == "" {
		return time.Now().In(loc)
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
	}
	var parseErr error
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t
		}
		parseErr = err
	}
	log.Fatalf("could not parse time %q: %v", s, parseErr)
	return time.Time{}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatalf("failed to encode JSON: %v", err)
	}
}

// ---------------------
// Rise/set (default) mode
// ---------------------

func runRiseSet(args []string) {
	c := newCommonFlags("sunglide")
	dateS := c.fs.String("date", "", "date in YYYY-MM-DD (optional, defaults to today in -tz)")
	event := c.fs.String("event", "both", "event: rise, set, or both")
	ephemeris := c.fs.String("ephemeris", "", "solar position series: noaa or meeus (default from config)")
	jsonOut := c.fs.Bool("json", false, "output result as JSON")

	c.fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sunglide [flags]

Flags:
`)
		c.fs.PrintDefaults()
	}

	cfg, loc := c.parse(args)
	if *ephemeris != "" {
		cfg.Backend.Ephemeris = *ephemeris
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid settings: %v", err)
	}

	var date time.Time
	if *dateS == "" {
		now := time.Now().In(loc)
		date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	} else {
		var err error
		date, err = time.ParseInLocation("2006-01-02", *dateS, loc)
		if err != nil {
			log.Fatalf("invalid -date %q: %v", *dateS, err)
		}
	}

	coords := coordinates(cfg)
	rs, err := newCalculator(cfg).RiseSet(date.Year(), int(date.Month()), date.Day(), coords.Lat, coords.Lon)
	if err != nil {
		log.Fatalf("error computing rise/set: %v", err)
	}
	rs = sunglide.RiseSet{Rise: rs.Rise.In(loc), Set: rs.Set.In(loc)}

	if *jsonOut {
		printRiseSetJSON(coords, date, *event, rs)
	} else {
		printRiseSetHuman(coords, date, *event, rs)
	}
}

func printRiseSetHuman(coords sunglide.Coordinates, date time.Time, event string, rs sunglide.RiseSet) {
	fmt.Printf("Sun rise/set for lat=%.6f lon=%.6f\n", coords.Lat, coords.Lon)
	fmt.Printf("Date: %s (%s)\n\n", date.Format("2006-01-02"), date.Location())

	switch strings.ToLower(event) {
	case "rise":
		fmt.Printf("Rise: %s\n", rs.Rise.Format(time.RFC3339))
	case "set":
		fmt.Printf("Set:  %s\n", rs.Set.Format(time.RFC3339))
	case "both":
		fmt.Printf("Rise: %s\n", rs.Rise.Format(time.RFC3339))
		fmt.Printf("Set:  %s\n", rs.Set.Format(time.RFC3339))
	default:
		fmt.Fprintf(os.Stderr, "unknown event %q, showing both\n", event)
		fmt.Printf("Rise: %s\n", rs.Rise.Format(time.RFC3339))
		fmt.Printf("Set:  %s\n", rs.Set.Format(time.RFC3339))
	}
}

type riseSetOutput struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Date      string     `json:"date"` // YYYY-MM-DD
	Rise      *time.Time `json:"rise,omitempty"`
	Set       *time.Time `json:"set,omitempty"`
	Timezone  string     `json:"timezone"`
}

func printRiseSetJSON(coords sunglide.Coordinates, date time.Time, event string, rs sunglide.RiseSet) {
	out := riseSetOutput{
		Latitude:  coords.Lat,
		Longitude: coords.Lon,
		Date:      date.Format("2006-01-02"),
		Timezone:  date.Location().String(),
	}
	switch strings.ToLower(event) {
	case "rise":
		out.Rise = &rs.Rise
	case "set":
		out.Set = &rs.Set
	default:
		out.Rise = &rs.Rise
		out.Set = &rs.Set
	}
	printJSON(out)
}

// ---------------------
// around / search subcommands
// ---------------------

type visibilityOutput struct {
	Time    time.Time `json:"time"`
	Rise    time.Time `json:"rise"`
	Set     time.Time `json:"set"`
	Visible bool      `json:"visible"`
	Backend string    `json:"backend"`
}

func runAround(args []string, search bool) {
	name := "around"
	if search {
		name = "search"
	}
	c := newCommonFlags(name)
	timeS := c.fs.String("time", "", "instant in RFC3339 or 'YYYY-MM-DDTHH:MM' (optional, defaults to now)")
	oracle := c.fs.String("oracle", "", "elevation oracle for search: approx, gosunrise or suncalc (default from config)")
	step := c.fs.Duration("step", 0, "initial search step (default depends on latitude)")
	jsonOut := c.fs.Bool("json", false, "output result as JSON")

	c.fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sunglide %s [flags]\n\nFlags:\n", name)
		c.fs.PrintDefaults()
	}

	cfg, loc := c.parse(args)
	if search {
		cfg.Backend.Mode = "search"
	}
	if *oracle != "" {
		cfg.Backend.Oracle = *oracle
	}
	if c.isSet("step") {
		cfg.Search.Step = *step
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid settings: %v", err)
	}

	at := parseTime(*timeS, loc)
	v, err := resolver(cfg)(at)
	if err != nil {
		log.Fatalf("error computing visibility: %v", err)
	}

	backend := cfg.Backend.Ephemeris
	if strings.EqualFold(cfg.Backend.Mode, "search") {
		backend = "search/" + cfg.Backend.Oracle
	}
	if *jsonOut {
		printJSON(visibilityOutput{
			Time:    v.Time.In(loc),
			Rise:    v.Rise.In(loc),
			Set:     v.Set.In(loc),
			Visible: v.Visible,
			Backend: backend,
		})
		return
	}

	fmt.Printf("Sun visibility at %s (%s, %s)\n", v.Time.In(loc).Format(time.RFC3339), loc, backend)
	if v.Visible {
		fmt.Printf("  Visible : yes\n")
		fmt.Printf("  Rose    : %s\n", v.Rise.In(loc).Format(time.RFC3339))
		fmt.Printf("  Sets    : %s\n", v.Set.In(loc).Format(time.RFC3339))
	} else {
		fmt.Printf("  Visible : no\n")
		fmt.Printf("  Set     : %s\n", v.Set.In(loc).Format(time.RFC3339))
		fmt.Printf("  Rises   : %s\n", v.Rise.In(loc).Format(time.RFC3339))
	}
}

// ---------------------
// brightness / simulate subcommands
// ---------------------

type brightnessFlags struct {
	night       *int
	day         *int
	transition  *time.Duration
	sensitivity *float64
}

func addBrightnessFlags(c *commonFlags) brightnessFlags {
	return brightnessFlags{
		night:       c.fs.Int("night", 0, "night brightness in percent (default from config)"),
		day:         c.fs.Int("day", 0, "day brightness in percent (default from config)"),
		transition:  c.fs.Duration("transition", 0, "length of the ramp around sunrise/sunset (default from config)"),
		sensitivity: c.fs.Float64("sensitivity", 0, "level change in percent that triggers a refresh (default from config)"),
	}
}

func (b brightnessFlags) params(c *commonFlags, cfg *config.Config) sunglide.BrightnessParams {
	p := sunglide.BrightnessParams{
		Night:       cfg.Brightness.Night,
		Day:         cfg.Brightness.Day,
		Transition:  cfg.Brightness.Transition,
		Sensitivity: cfg.Brightness.Sensitivity,
	}
	if c.isSet("night") {
		p.Night = *b.night
	}
	if c.isSet("day") {
		p.Day = *b.day
	}
	if c.isSet("transition") {
		p.Transition = *b.transition
	}
	if c.isSet("sensitivity") {
		p.Sensitivity = *b.sensitivity
	}
	if err := p.Validate(); err != nil {
		log.Fatalf("%v", err)
	}
	return p
}

type brightnessOutput struct {
	Time    time.Time `json:"time"`
	Percent int       `json:"percent"`
	Level   float64   `json:"level"`
	Expiry  string    `json:"expiry"`
	Until   time.Time `json:"until"`
	Visible bool      `json:"visible"`
}

func runBrightness(args []string) {
	c := newCommonFlags("brightness")
	timeS := c.fs.String("time", "", "instant in RFC3339 or 'YYYY-MM-DDTHH:MM' (optional, defaults to now)")
	bf := addBrightnessFlags(c)
	jsonOut := c.fs.Bool("json", false, "output result as JSON")

	cfg, loc := c.parse(args)
	params := bf.params(c, cfg)

	v, err := resolver(cfg)(parseTime(*timeS, loc))
	if err != nil {
		log.Fatalf("error computing visibility: %v", err)
	}
	b, err := sunglide.Brightness(params, v)
	if err != nil {
		log.Fatalf("error computing brightness: %v", err)
	}

	until := v.Time.Add(b.Expiry).In(loc)
	if *jsonOut {
		printJSON(brightnessOutput{
			Time:    v.Time.In(loc),
			Percent: b.Percent,
			Level:   b.Level,
			Expiry:  b.Expiry.String(),
			Until:   until,
			Visible: v.Visible,
		})
		return
	}
	fmt.Printf("Brightness at %s: %d%% (%.3f), valid for %v (until %s)\n",
		v.Time.In(loc).Format(time.RFC3339), b.Percent, b.Level, b.Expiry, until.Format(time.RFC3339))
}

func runSimulate(args []string) {
	c := newCommonFlags("simulate")
	startS := c.fs.String("start", "", "start instant (optional, defaults to noon today in -tz)")
	period := c.fs.Duration("period", 24*time.Hour, "length of the simulation")
	logJSON := c.fs.Bool("log-json", false, "log steps as JSON instead of text")
	bf := addBrightnessFlags(c)

	cfg, loc := c.parse(args)
	params := bf.params(c, cfg)

	ctx := context.Background()
	if *logJSON {
		ctx = ctxlog.NewJSONLogger(ctx, os.Stdout, nil)
	} else {
		ctx = ctxlog.WithLogger(ctx, slog.New(slog.NewTextHandler(os.Stdout, nil)))
	}

	var start time.Time
	if *startS == "" {
		now := time.Now().In(loc)
		start = time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, loc)
	} else {
		start = parseTime(*startS, loc)
	}

	if err := simulate(ctx, resolver(cfg), params, start, start.Add(*period), loc); err != nil {
		log.Fatalf("simulation failed: %v", err)
	}
}

// simulate follows the brightness expiries from start to end, logging every
// step.
func simulate(ctx context.Context, resolve func(time.Time) (sunglide.Visibility, error),
	params sunglide.BrightnessParams, start, end time.Time, loc *time.Location) error {
	logger := ctxlog.Logger(ctx)
	steps := 0
	for at := start; !at.After(end); steps++ {
		v, err := resolve(at)
		if err != nil {
			return fmt.Errorf("at %v: %w", at, err)
		}
		b, err := sunglide.Brightness(params, v)
		if err != nil {
			return err
		}
		logger.Info("brightness",
			"at", at.In(loc).Format("02/01/06 15:04:05"),
			"percent", b.Percent,
			"level", b.Level,
			"visible", v.Visible,
			"set", v.Set.In(loc).Format("02/01/06 15:04"),
			"rise", v.Rise.In(loc).Format("02/01/06 15:04"),
			"expiry", b.Expiry.String(),
		)
		at = at.Add(b.Expiry)
	}
	logger.Info("simulation complete", "steps", steps)
	return nil
}
