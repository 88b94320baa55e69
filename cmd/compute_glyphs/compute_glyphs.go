package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/wbrown/img2glyph"
)

// tracer traces with key 'img2glyph'
func tracer() tracing.Trace {
	return tracing.Select("img2glyph")
}

// parseWidths parses a comma separated list of glyph widths.
func parseWidths(s string) ([]int, error) {
	var widths []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		w, err := strconv.Atoi(field)
		if err != nil || w <= 0 {
			return nil, fmt.Errorf("invalid width %q", field)
		}
		widths = append(widths, w)
	}
	if len(widths) == 0 {
		return nil, fmt.Errorf("no widths given")
	}
	return widths, nil
}

func main() {
	inputFont := flag.String("font", img2glyph.DefaultFont,
		"System font file name or path to a TTF file")
	outputFile := flag.String("output", "", "Path to save the output glyph table (required)")
	widthList := flag.String("widths", strconv.Itoa(img2glyph.DefaultRegionSize),
		"Comma separated glyph widths in pixels, one per region size to be used")
	charset := flag.String("charset", "",
		"Candidate characters (default: printable ASCII and block elements)")
	flag.Parse()

	if *outputFile == "" {
		fmt.Println("The -output flag is required")
		flag.PrintDefaults()
		os.Exit(1)
	}
	widths, err := parseWidths(*widthList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
		"trace.img2glyph": "Info",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Fprintf(os.Stderr, "error configuring tracing\n")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	fontPath, err := img2glyph.FindFont(*inputFont)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading font: %v\n", err)
		os.Exit(1)
	}
	var candidates []rune
	if *charset != "" {
		candidates = img2glyph.ParseCharset(*charset)
	}
	font, err := img2glyph.LoadTrueTypeGlyphs(fontPath, candidates)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading font: %v\n", err)
		os.Exit(1)
	}

	tracer().Infof("Computing glyphs for font: %s", fontPath)
	table, err := img2glyph.ComputeGlyphTable(font, filepath.Base(fontPath), widths...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to compute glyphs: %v\n", err)
		os.Exit(1)
	}
	if err := table.Save(*outputFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save glyph table: %v\n", err)
		os.Exit(1)
	}

	if info, err := os.Stat(*outputFile); err == nil {
		tracer().Infof("Saved glyph table to %s (%.2f KB)", *outputFile, float64(info.Size())/1024)
	}
}
