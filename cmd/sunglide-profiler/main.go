package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"cloudeng.io/logging/ctxlog"
	"github.com/nathan-osman/go-sunrise"
	"github.com/sixdouglas/suncalc"

	"github.com/thurmanmarka/sunglide"
	"github.com/thurmanmarka/sunglide/internal/timeutil"
)

type stats struct {
	count int
	sum   float64
	min   float64
	max   float64
}

func (s *stats) add(v float64) {
	if math.IsNaN(v) {
		return
	}
	if s.count == 0 {
		s.min, s.max = v, v
	} else {
		s.min = math.Min(s.min, v)
		s.max = math.Max(s.max, v)
	}
	s.sum += v
	s.count++
}

func (s *stats) mean() float64 {
	if s.count == 0 {
		return math.NaN()
	}
	return s.sum / float64(s.count)
}

func (s *stats) print(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s:\n", title)
	fmt.Fprintf(w, "  count: %d\n", s.count)
	fmt.Fprintf(w, "  min:   %.3f\n", s.min)
	fmt.Fprintf(w, "  max:   %.3f\n", s.max)
	fmt.Fprintf(w, "  mean:  %.3f\n", s.mean())
}

func diffMinutes(a, b time.Time) float64 {
	return math.Abs(diffMinutesSigned(a, b))
}

func diffMinutesSigned(a, b time.Time) float64 {
	// If either time is zero, treat as "no data".
	if a.IsZero() || b.IsZero() {
		return math.NaN()
	}
	return a.Sub(b).Minutes() // can be negative or positive
}

// reference is one expected sunrise/sunset pair.
type reference struct {
	row       int
	date      time.Time
	rise, set time.Time
}

// referenceSource produces the rows the calculator is compared against.
type referenceSource func(ctx context.Context) ([]reference, error)

// CSV format:
//
// date,rise,set
// 2025-01-01,07:32,17:12
// 2025-01-02,07:32,17:13
//
// - date is YYYY-MM-DD
// - rise/set are local times in HH:MM (24-hour clock)
// - All times are assumed to be in the timezone given by -tz.
func csvReference(path string, loc *time.Location) referenceSource {
	return func(ctx context.Context) ([]reference, error) {
		logger := ctxlog.Logger(ctx)
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open refcsv %q: %w", path, err)
		}
		defer f.Close()

		r := csv.NewReader(f)
		r.FieldsPerRecord = -1 // allow variable, we validate

		records, err := r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if len(records) == 0 {
			return nil, fmt.Errorf("empty CSV file %q", path)
		}

		// If first row looks like a header, skip it.
		startIdx := 0
		if len(records[0]) >= 1 && strings.EqualFold(records[0][0], "date") {
			startIdx = 1
		}

		var refs []reference
		for i := startIdx; i < len(records); i++ {
			row := records[i]
			if len(row) < 3 {
				logger.Warn("skipping row: expected date,rise,set", "row", i+1, "columns", len(row))
				continue
			}
			dateStr := strings.TrimSpace(row[0])
			date, err := time.ParseInLocation("2006-01-02", dateStr, loc)
			if err != nil {
				logger.Warn("skipping row: invalid date", "row", i+1, "date", dateStr, "error", err)
				continue
			}
			rise, err := parseLocalTime(date, strings.TrimSpace(row[1]), loc)
			if err != nil {
				logger.Warn("skipping row: invalid rise", "row", i+1, "rise", row[1], "error", err)
				continue
			}
			set, err := parseLocalTime(date, strings.TrimSpace(row[2]), loc)
			if err != nil {
				logger.Warn("skipping row: invalid set", "row", i+1, "set", row[2], "error", err)
				continue
			}
			refs = append(refs, reference{row: i + 1, date: date, rise: rise, set: set})
		}
		return refs, nil
	}
}

// libraryReference computes the expected times for every date in [from, to]
// with a third-party solar library. Days without a sunrise or sunset are
// reported with zero times and excluded from the statistics.
func libraryReference(name string, lat, lon float64, from, to time.Time) referenceSource {
	return func(ctx context.Context) ([]reference, error) {
		var refs []reference
		row := 1
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			var rise, set time.Time
			switch name {
			case "gosunrise":
				rise, set = sunrise.SunriseSunset(lat, lon, d.Year(), d.Month(), d.Day())
			case "suncalc":
				noon := time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.UTC)
				times := suncalc.GetTimes(noon, lat, lon)
				rise, set = times["sunrise"].Value, times["sunset"].Value
			default:
				return nil, fmt.Errorf("unknown reference %q (use gosunrise or suncalc)", name)
			}
			refs = append(refs, reference{row: row, date: d, rise: rise, set: set})
			row++
		}
		ctxlog.Logger(ctx).Debug("computed reference", "library", name, "days", len(refs))
		return refs, nil
	}
}

func main() {
	var (
		lat       = flag.Float64("lat", 0, "latitude in degrees (north positive)")
		lon       = flag.Float64("lon", 0, "longitude in degrees (east positive, west negative)")
		tzName    = flag.String("tz", "UTC", "IANA time zone name (e.g. America/Phoenix)")
		refCSV    = flag.String("refcsv", "", "path to reference ephemeris CSV file (date,rise,set)")
		refLib    = flag.String("ref", "", "compare against a library instead of a CSV: gosunrise or suncalc")
		fromS     = flag.String("from", "", "first date (YYYY-MM-DD) for -ref")
		toS       = flag.String("to", "", "last date (YYYY-MM-DD) for -ref")
		ephemeris = flag.String("ephemeris", "noaa", "solar position series: noaa or meeus")
		verbose   = flag.Bool("verbose", false, "log per-day errors instead of only summary")
		logJSON   = flag.Bool("log-json", false, "log as JSON instead of text")
		outCSV    = flag.String("outcsv", "", "optional path to write per-row error CSV")
	)

	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	ctx := context.Background()
	if *logJSON {
		ctx = ctxlog.NewJSONLogger(ctx, os.Stderr, opts)
	} else {
		ctx = ctxlog.WithLogger(ctx, slog.New(slog.NewTextHandler(os.Stderr, opts)))
	}

	loc, err := time.LoadLocation(*tzName)
	if err != nil {
		log.Fatalf("failed to load timezone %q: %v", *tzName, err)
	}

	var source referenceSource
	switch {
	case *refCSV != "" && *refLib != "":
		log.Fatalf("use either -refcsv or -ref, not both")
	case *refCSV != "":
		source = csvReference(*refCSV, loc)
	case *refLib != "":
		from, err := time.ParseInLocation("2006-01-02", *fromS, loc)
		if err != nil {
			log.Fatalf("invalid -from %q: %v", *fromS, err)
		}
		to, err := time.ParseInLocation("2006-01-02", *toS, loc)
		if err != nil {
			log.Fatalf("invalid -to %q: %v", *toS, err)
		}
		source = libraryReference(strings.ToLower(*refLib), *lat, *lon, from, to)
	default:
		log.Fatalf("missing -refcsv (path to reference CSV) or -ref (library name)")
	}

	var calcOpts []sunglide.Option
	switch strings.ToLower(*ephemeris) {
	case "noaa":
		calcOpts = append(calcOpts, sunglide.WithBackend(sunglide.BackendNOAA))
	case "meeus":
		calcOpts = append(calcOpts, sunglide.WithBackend(sunglide.BackendMeeus))
	default:
		log.Fatalf("unknown ephemeris %q (use noaa or meeus)", *ephemeris)
	}

	if *lat == 0 && *lon == 0 {
		log.Println("warning: lat=0 lon=0 (Gulf of Guinea). Did you mean to set -lat/-lon?")
	}

	refs, err := source(ctx)
	if err != nil {
		log.Fatalf("%v", err)
	}

	var outWriter *csv.Writer
	if *outCSV != "" {
		outFile, err := os.Create(*outCSV)
		if err != nil {
			log.Fatalf("failed to create outcsv %q: %v", *outCSV, err)
		}
		defer outFile.Close()
		outWriter = csv.NewWriter(outFile)
		defer outWriter.Flush()
	}

	p := profiler{
		calc:   sunglide.NewCalculator(calcOpts...),
		coords: sunglide.Coordinates{Lat: *lat, Lon: *lon},
		loc:    loc,
		out:    outWriter,
	}
	if err := p.run(ctx, refs); err != nil {
		log.Fatalf("%v", err)
	}

	p.summary(os.Stdout, strings.ToUpper(*ephemeris))
}

type profiler struct {
	calc   *sunglide.Calculator
	coords sunglide.Coordinates
	loc    *time.Location
	out    *csv.Writer

	rows, skipped               int
	riseAbs, setAbs             stats
	riseSigned, setSigned       stats
	worstRiseDate, worstSetDate string
}

func (p *profiler) run(ctx context.Context, refs []reference) error {
	logger := ctxlog.Logger(ctx)
	if p.out != nil {
		if err := p.out.Write([]string{"date", "doy", "rise_err", "set_err", "rise_signed", "set_signed"}); err != nil {
			return fmt.Errorf("failed to write outcsv header: %w", err)
		}
	}

	for _, ref := range refs {
		p.rows++
		dateStr := ref.date.Format("2006-01-02")
		y, m, d := ref.date.Year(), int(ref.date.Month()), ref.date.Day()
		rs, err := p.calc.RiseSet(y, m, d, p.coords.Lat, p.coords.Lon)
		if err != nil {
			logger.Warn("skipping row: sunglide error", "row", ref.row, "date", dateStr, "error", err)
			p.skipped++
			continue
		}

		// Compare in local time zone.
		gotRise := rs.Rise.In(p.loc)
		gotSet := rs.Set.In(p.loc)

		riseErr := diffMinutes(gotRise, ref.rise)
		setErr := diffMinutes(gotSet, ref.set)
		riseSigned := diffMinutesSigned(gotRise, ref.rise)
		setSigned := diffMinutesSigned(gotSet, ref.set)

		if !math.IsNaN(riseErr) && (p.riseAbs.count == 0 || riseErr > p.riseAbs.max) {
			p.worstRiseDate = dateStr
		}
		if !math.IsNaN(setErr) && (p.setAbs.count == 0 || setErr > p.setAbs.max) {
			p.worstSetDate = dateStr
		}
		p.riseAbs.add(riseErr)
		p.setAbs.add(setErr)
		p.riseSigned.add(riseSigned)
		p.setSigned.add(setSigned)

		logger.Debug("compared",
			"date", dateStr,
			"rise_err", riseErr, "rise_got", gotRise.Format("15:04"), "rise_ref", ref.rise.In(p.loc).Format("15:04"),
			"set_err", setErr, "set_got", gotSet.Format("15:04"), "set_ref", ref.set.In(p.loc).Format("15:04"),
		)

		if p.out != nil {
			rec := []string{
				dateStr,
				strconv.Itoa(timeutil.DayOfYear(m, d, timeutil.IsLeapYear(y))),
				fmt.Sprintf("%.6f", riseErr),
				fmt.Sprintf("%.6f", setErr),
				fmt.Sprintf("%.6f", riseSigned),
				fmt.Sprintf("%.6f", setSigned),
			}
			if err := p.out.Write(rec); err != nil {
				logger.Error("failed to write outcsv", "row", ref.row, "error", err)
			}
		}
	}
	return nil
}

func (p *profiler) summary(w io.Writer, mode string) {
	fmt.Fprintln(w, "=== sunglide profiler summary ===")
	fmt.Fprintf(w, "Mode:    %s\n", mode)
	fmt.Fprintf(w, "Lat/Lon: %.4f / %.4f\n", p.coords.Lat, p.coords.Lon)
	fmt.Fprintf(w, "TZ:      %s\n", p.loc.String())
	fmt.Fprintf(w, "Rows:    %d (processed), %d skipped\n", p.rows-p.skipped, p.skipped)

	if p.riseAbs.count == 0 {
		fmt.Fprintln(w, "No valid rows to compute stats.")
		return
	}

	p.riseAbs.print(w, "Rise error (minutes)")
	fmt.Fprintf(w, "  worst: %s\n", p.worstRiseDate)
	p.setAbs.print(w, "Set error (minutes)")
	fmt.Fprintf(w, "  worst: %s\n", p.worstSetDate)
	p.riseSigned.print(w, "Rise signed error (minutes, our - ref)")
	p.setSigned.print(w, "Set signed error (minutes, our - ref)")
}

func parseLocalTime(date time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	// Expect HH:MM (optionally HH:MM:SS).
	layout := "15:04"
	if strings.Count(hhmm, ":") == 2 {
		layout = "15:04:05"
	}

	parsed, err := time.ParseInLocation(layout, hhmm, loc)
	if err != nil {
		return time.Time{}, err
	}
	// Combine parsed clock time with date.
	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), parsed.Second(), 0, loc), nil
}
