package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/woozymasta/satglobe/internal/catalog"
	"github.com/woozymasta/satglobe/internal/orbit"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Input  string `short:"i" long:"in"     description:"Input GP JSON catalog. Reads from stdin if empty"`
	Output string `short:"o" long:"out"    description:"Output file path. Writes to stdout if empty"`
	Format string `short:"f" long:"format" description:"Output format" choice:"json" choice:"yaml" default:"json"`
	Tag    string `short:"t" long:"tag"    description:"Only output satellites of this regime (LEO, MEO, GEO, HEO)"`
}

// Entry is the regime of a single satellite.
type Entry struct {
	Name     string    `json:"name" yaml:"name"`
	Color    string    `json:"color" yaml:"color"`
	Tag      orbit.Tag `json:"tag" yaml:"tag"`
	NoradID  int       `json:"norad_id" yaml:"norad_id"`
	Altitude float64   `json:"altitude_km" yaml:"altitude_km"`
	Ecc      float64   `json:"eccentricity" yaml:"eccentricity"`
	Height   float64   `json:"height" yaml:"height"`
}

// Summary is the classify output document.
type Summary struct {
	Counts     map[string]int `json:"counts" yaml:"counts"`
	Satellites []Entry        `json:"satellites" yaml:"satellites"`
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

	var filter orbit.Tag
	if opts.Tag != "" {
		filter = orbit.ParseTag(opts.Tag)
		if filter == orbit.TagDefault {
			fmt.Fprintf(os.Stderr, "Error: unknown regime %q\n", opts.Tag)
			os.Exit(1)
		}
	}

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

	records, err := catalog.Decode(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	summary := Summary{
		Counts:     make(map[string]int),
		Satellites: make([]Entry, 0, len(records)),
	}

	for _, r := range records {
		regime := r.Regime()
		if filter != orbit.TagDefault && regime.Tag != filter {
			continue
		}

		summary.Counts[regime.Tag.String()]++
		summary.Satellites = append(summary.Satellites, Entry{
			Name:     r.ObjectName,
			NoradID:  r.NoradCatID,
			Altitude: r.Altitude(),
			Ecc:      r.Eccentricity,
			Tag:      regime.Tag,
			Height:   regime.HeightOffset,
			Color:    regime.Hex(),
		})
	}

	var outputData []byte
	if opts.Format == "yaml" {
		outputData, err = yaml.Marshal(summary)
	} else {
		outputData, err = json.MarshalIndent(summary, "", "  ")
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
		fmt.Fprintf(os.Stderr, "Classified %d satellites to %s (format: %s)\n", len(summary.Satellites), opts.Output, opts.Format)
	} else {
		fmt.Println(string(outputData))
	}
}
