// Command slewcalc computes the candidate nearest a camera position and the
// azimuth the camera must slew to, without a running service.
//
//	slewcalc -r 43.263,-2.935 -c 43.27,-2.935 -c 43.25,-2.94
//	slewcalc -i points.yaml -f geojson
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"

	"github.com/samirrijal/camslew/internal/core/domain"
	"github.com/samirrijal/camslew/internal/core/usecases"
	"github.com/samirrijal/camslew/internal/pkg/geospatial"
)

type Options struct {
	Reference    string   `short:"r" long:"reference" description:"Camera position as lat,lon"`
	Candidates   []string `short:"c" long:"candidate" description:"Candidate point as lat,lon (repeatable)"`
	Input        string   `short:"i" long:"in" description:"YAML or JSON points file; - reads stdin"`
	Format       string   `short:"f" long:"format" description:"Output format" choice:"text" choice:"json" choice:"yaml" choice:"geojson" default:"text"`
	NoRangeCheck bool     `long:"no-range-check" description:"Accept coordinates outside [-90,90] / [-180,180]"`
}

// pointsFile is the layout of the --in file.
type pointsFile struct {
	Reference  usecases.PointText   `yaml:"reference" json:"reference"`
	Candidates []usecases.PointText `yaml:"candidates" json:"candidates"`
}

// output is what json and yaml formats print.
type output struct {
	Index          int     `yaml:"index" json:"index"`
	Latitude       float64 `yaml:"latitude" json:"latitude"`
	Longitude      float64 `yaml:"longitude" json:"longitude"`
	DistanceMeters float64 `yaml:"distance_meters" json:"distance_meters"`
	Azimuth        string  `yaml:"azimuth" json:"azimuth"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if err := run(opts, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts Options, stdin io.Reader, stdout io.Writer) error {
	in, err := loadPoints(opts, stdin)
	if err != nil {
		return err
	}

	svc := usecases.NewSlewService(nil, nil, usecases.SlewOptions{EnforceRange: !opts.NoRangeCheck})
	res, err := svc.Compute(in.Reference, in.Candidates)
	if err != nil {
		return describe(err)
	}

	if opts.Format == "geojson" {
		return writeGeoJSON(stdout, in, res)
	}

	if res == nil {
		if opts.Format == "text" {
			_, err := fmt.Fprintln(stdout, "no candidates")
			return err
		}
		return encode(stdout, opts.Format, nil)
	}

	out := output{
		Index:          res.Index,
		Latitude:       res.Point.Lat,
		Longitude:      res.Point.Lon,
		DistanceMeters: res.DistanceMeters,
		Azimuth:        geospatial.FormatAzimuth(res.Azimuth),
	}
	if opts.Format == "text" {
		_, err := fmt.Fprintf(stdout, "nearest #%d %s at %.1f m, azimuth %s\n",
			out.Index, res.Point, out.DistanceMeters, out.Azimuth)
		return err
	}
	return encode(stdout, opts.Format, out)
}

// loadPoints merges the points file (if any) with points given as flags.
// A --reference flag overrides the file's reference; --candidate flags are
// appended after the file's candidates.
func loadPoints(opts Options, stdin io.Reader) (pointsFile, error) {
	var in pointsFile

	if opts.Input != "" {
		var data []byte
		var err error
		if opts.Input == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(opts.Input)
		}
		if err != nil {
			return in, fmt.Errorf("read points: %w", err)
		}
		// YAML is a superset of JSON, so one decoder handles both.
		if err := yaml.Unmarshal(data, &in); err != nil {
			return in, fmt.Errorf("parse points: %w", err)
		}
	}

	if opts.Reference != "" {
		p, err := splitPair(opts.Reference)
		if err != nil {
			return in, fmt.Errorf("--reference: %w", err)
		}
		in.Reference = p
	}
	for _, c := range opts.Candidates {
		p, err := splitPair(c)
		if err != nil {
			return in, fmt.Errorf("--candidate %q: %w", c, err)
		}
		in.Candidates = append(in.Candidates, p)
	}

	if in.Reference == (usecases.PointText{}) {
		return in, errors.New("a reference point is required (--reference or --in)")
	}
	return in, nil
}

func splitPair(s string) (usecases.PointText, error) {
	lat, lon, ok := strings.Cut(s, ",")
	if !ok {
		return usecases.PointText{}, errors.New("expected lat,lon")
	}
	return usecases.PointText{Lat: strings.TrimSpace(lat), Lon: strings.TrimSpace(lon)}, nil
}

// describe turns validation errors into the messages a user sees in a form.
func describe(err error) error {
	prefix := "reference"
	var candErr *usecases.CandidateError
	if errors.As(err, &candErr) {
		prefix = fmt.Sprintf("candidate %d", candErr.Index)
	}
	verrs, ok := domain.AsValidationErrors(err)
	if !ok {
		return err
	}
	msgs := make([]string, len(verrs))
	for i, v := range verrs {
		msgs[i] = fmt.Sprintf("%s %s: %s", prefix, v.Field, v.Message())
	}
	return errors.New(strings.Join(msgs, "; "))
}

func encode(w io.Writer, format string, v any) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeGeoJSON(w io.Writer, in pointsFile, res *domain.NearestResult) error {
	ref, err := domain.ParsePoint(in.Reference.Lat, in.Reference.Lon)
	if err != nil {
		return describe(err)
	}
	set := domain.NewCandidateSet()
	for _, c := range in.Candidates {
		p, err := domain.ParsePoint(c.Lat, c.Lon)
		if err != nil {
			return describe(err)
		}
		set = set.Add(p)
	}

	data, err := geospatial.FeatureCollection(&ref, set, res).MarshalJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
