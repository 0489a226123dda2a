package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/woozymasta/tourmap/internal/geo"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Input  string `short:"i" long:"in" description:"Input file path. Reads from stdin if empty"`
	Output string `short:"o" long:"out" description:"Output file path. Writes to stdout if empty"`
	Format string `short:"f" long:"format" description:"Points format (input for encode, output for decode)" choice:"json" choice:"yaml" default:"json"`

	Args struct {
		Command string `positional-arg-name:"command" description:"encode or decode" required:"true"`
	} `positional-args:"yes"`
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
	var inputData []byte
	var err error

	if opts.Input != "" {
		inputData, err = os.ReadFile(opts.Input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
			os.Exit(1)
		}
	} else {
		inputData, err = io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			os.Exit(1)
		}
	}

	var outputData []byte
	switch opts.Args.Command {
	case "encode":
		outputData, err = encode(inputData, opts.Format)
	case "decode":
		outputData, err = decode(inputData, opts.Format)
	default:
		err = fmt.Errorf("unknown command %q, expected encode or decode", opts.Args.Command)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, outputData, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println(strings.TrimRight(string(outputData), "\n"))
}

// encode reads a list of {lat, lon} points and returns the polyline.
func encode(data []byte, format string) ([]byte, error) {
	var path []geo.GeoPoint

	var err error
	if format == "yaml" {
		err = yaml.Unmarshal(data, &path)
	} else {
		err = json.Unmarshal(data, &path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse points: %w", err)
	}

	for i, p := range path {
		if !p.Valid() {
			return nil, fmt.Errorf("point %d out of range: %s", i, p)
		}
	}

	return []byte(geo.EncodePolyline(path)), nil
}

// decode reads a polyline and returns its points.
func decode(data []byte, format string) ([]byte, error) {
	path, err := geo.DecodePolyline(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, err
	}
	if path == nil {
		path = []geo.GeoPoint{}
	}

	if format == "yaml" {
		return yaml.Marshal(path)
	}
	return json.MarshalIndent(path, "", "  ")
}
