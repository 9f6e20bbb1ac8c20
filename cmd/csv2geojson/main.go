package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/woozymasta/aerosurf/internal/obstacle"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Input     string `short:"i" long:"in"   description:"Input obstacle CSV path. Reads from stdin if empty"`
	Output    string `short:"o" long:"out"  description:"Output file path. Writes to stdout if empty"`
	Format    string `short:"f" long:"format" description:"Output format" choice:"geojson" choice:"yaml" default:"geojson"`
	Name      string `long:"name" description:"Name column (index, letter or header)" default:"A"`
	Latitude  string `long:"lat"  description:"Latitude column (index, letter or header)" default:"B"`
	Longitude string `long:"lng"  description:"Longitude column (index, letter or header)" default:"C"`
	Elevation string `long:"elev" description:"Elevation column in meters (index, letter or header)" default:"D"`
	Strict    bool   `long:"strict" description:"Fail when any row is skipped"`
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

	// Read Input
	var in io.Reader = os.Stdin
	if opts.Input != "" {
		f, err := os.Open(opts.Input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	cols := obstacle.Columns{
		Name:      opts.Name,
		Latitude:  opts.Latitude,
		Longitude: opts.Longitude,
		Elevation: opts.Elevation,
	}

	obstacles, skipped, err := obstacle.ReadCSV(in, cols)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing CSV: %v\n", err)
		os.Exit(1)
	}

	for _, s := range skipped {
		fmt.Fprintf(os.Stderr, "Skipping %s\n", s)
	}
	if opts.Strict && len(skipped) > 0 {
		fmt.Fprintf(os.Stderr, "Error: %d rows skipped in strict mode\n", len(skipped))
		os.Exit(1)
	}

	// marshal
	var outputData []byte
	if opts.Format == "yaml" {
		outputData, err = yaml.Marshal(obstacles)
	} else {
		outputData, err = json.MarshalIndent(obstacle.ToGeoJSON(obstacles), "", "  ")
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		err = os.WriteFile(opts.Output, outputData, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Successfully converted %d obstacles to %s (format: %s, skipped: %d)\n",
			len(obstacles), opts.Output, strings.ToLower(opts.Format), len(skipped))
	} else {
		fmt.Println(string(outputData))
	}
}
