package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/wbrown/img2glyph"
	"github.com/wbrown/img2glyph/imageutil"
)

// tracer traces with key 'img2glyph'
func tracer() tracing.Trace {
	return tracing.Select("img2glyph")
}

// envOverrides maps flag names to the environment variables that may
// supply their value when the flag is not given on the command line.
var envOverrides = map[string]string{
	"font":      "GLYPHIFY_FONT",
	"glyphs":    "GLYPHIFY_GLYPHS",
	"size":      "GLYPHIFY_SIZE",
	"metric":    "GLYPHIFY_METRIC",
	"threshold": "GLYPHIFY_THRESHOLD",
	"workers":   "GLYPHIFY_WORKERS",
	"timeout":   "GLYPHIFY_TIMEOUT",
}

func main() {
	inputFile := flag.String("input", "",
		"Path to the input image file (required, may also be given as argument)")
	fontSel := flag.String("font", img2glyph.DefaultFont,
		"System font file name or path to a TTF file")
	size := flag.Int("size", img2glyph.DefaultRegionSize,
		"Region size in pixels; glyphs are rasterized at this size")
	metricName := flag.String("metric", "hausdorff",
		"Similarity metric: hausdorff, hamming or setdiff (alias levenshtein)")
	verbose := flag.Bool("v", false, "Verbose output (trace level Debug)")
	traceLevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	keepPartial := flag.Bool("partial", false,
		"Keep truncated regions at the right and bottom edge")
	threshold := flag.Int("threshold", img2glyph.DefaultDarknessThreshold,
		"Pixels darker than this are ink (0-255)")
	coverage := flag.Int("coverage", img2glyph.DefaultCoverageThreshold,
		"Glyph cells with more coverage than this are ink (0-255)")
	charset := flag.String("charset", "",
		"Candidate characters (default: printable ASCII and block elements)")
	workers := flag.Int("workers", img2glyph.DefaultWorkers(),
		"Number of regions matched concurrently")
	timeout := flag.Duration("timeout", 0,
		"Time limit per region, 0 for none")
	strict := flag.Bool("strict", false,
		"Fail instead of printing a placeholder for unmatched regions")
	maxWidth := flag.Int("maxwidth", 0,
		"Downscale images wider than this many pixels, 0 to disable")
	pngFile := flag.String("png", "",
		"Also write a preview of the glyph grid to this PNG file")
	glyphPreview := flag.String("glyph", "",
		"Print the rasterized bitmap of this character and exit")
	regionCell := flag.String("region", "",
		"After rendering, draw the ink of the region at row,col beside its glyph")
	tableFile := flag.String("glyphs", "",
		"Glyph table from compute_glyphs to use instead of a font")
	envFile := flag.String("env", ".env",
		"Environment file with GLYPHIFY_* defaults")
	flag.Parse()

	if err := applyEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading environment: %v\n", err)
		os.Exit(1)
	}

	// set up logging
	level := *traceLevel
	if *verbose {
		level = "Debug"
	}
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":           "go",
		"trace.img2glyph":           level,
		"trace.img2glyph.imageutil": level,
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Fprintf(os.Stderr, "error configuring tracing\n")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	tracer().SetTraceLevel(parseTraceLevel(level))

	metric, err := img2glyph.ParseMetric(*metricName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *threshold < 0 || *threshold > 255 || *coverage < 0 || *coverage > 255 {
		fmt.Fprintln(os.Stderr, "Thresholds must be between 0 and 255")
		os.Exit(1)
	}
	if *size <= 0 {
		fmt.Fprintln(os.Stderr, "Region size must be positive")
		os.Exit(1)
	}

	source, sourceName, err := loadGlyphs(*tableFile, *fontSel, *charset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading glyphs: %v\n", err)
		os.Exit(1)
	}
	if err := checkGlyphTable(source, *size); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	glyphs := img2glyph.NewCachedGlyphs(source)

	if *glyphPreview != "" {
		r, _ := utf8.DecodeRuneInString(*glyphPreview)
		bitmap, err := glyphs.Rasterize(r, *size)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rasterizing %q: %v\n", r, err)
			os.Exit(1)
		}
		fmt.Printf("%q in %s at %dpx\n", r, sourceName, *size)
		fmt.Print(img2glyph.FormatBitmap(bitmap, img2glyph.CoverageAbove(uint8(*coverage))))
		return
	}

	if *inputFile == "" {
		*inputFile = flag.Arg(0)
	}
	if *inputFile == "" {
		fmt.Println("Please provide the image using the -input flag")
		flag.PrintDefaults()
		os.Exit(1)
	}

	explainRow, explainCol := -1, -1
	if *regionCell != "" {
		if explainRow, explainCol, err = parseCell(*regionCell); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	img, err := imageutil.OpenGray(*inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading image: %v\n", err)
		os.Exit(1)
	}
	img = imageutil.ResizeGrayToWidth(img, *maxWidth, imageutil.InterpolationArea)
	if widths := missingRegionWidths(source, img.Width(), img.Height(), *size, *keepPartial); len(widths) > 0 {
		tracer().Errorf("glyph table has no glyphs at %v px: regions of that width will be placeholders", widths)
	}

	renderer := img2glyph.NewRenderer(glyphs,
		img2glyph.WithRegionSize(*size, *size),
		img2glyph.WithMetric(metric),
		img2glyph.WithKeepPartial(*keepPartial),
		img2glyph.WithDarknessThreshold(uint8(*threshold)),
		img2glyph.WithCoverageThreshold(uint8(*coverage)),
		img2glyph.WithWorkers(*workers),
		img2glyph.WithRegionTimeout(*timeout),
		img2glyph.WithStrict(*strict),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	grid, stats, err := renderer.Render(ctx, img)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error processing image: %v\n", err)
		os.Exit(2)
	}
	if _, err := grid.WriteTo(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(2)
	}

	if explainRow >= 0 {
		explanation, err := renderer.ExplainRegion(img, grid, explainRow, explainCol)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error explaining region: %v\n", err)
			os.Exit(2)
		}
		fmt.Print(explanation)
	}

	if *pngFile != "" {
		preview := img2glyph.RenderGridImage(grid, glyphs, *size, uint8(*coverage))
		if err := imageutil.SavePNG(preview, *pngFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing PNG: %v\n", err)
			os.Exit(2)
		}
		tracer().Infof("PNG preview written to %s", *pngFile)
	}

	hits, misses, rate := glyphs.CacheStats()
	tracer().Debugf("pass %s: %d regions, %d placeholders, computation time %v",
		stats.PassID, stats.Regions, stats.Placeholders, time.Since(start))
	tracer().Debugf("glyph cache: %d hits, %d misses (%.1f%%)", hits, misses, rate*100)
}

// loadGlyphs opens the glyph table if one is given and the font otherwise.
func loadGlyphs(tableFile, fontSel, charset string) (img2glyph.GlyphSource, string, error) {
	if tableFile != "" {
		table, err := img2glyph.LoadGlyphTable(tableFile)
		if err != nil {
			return nil, "", err
		}
		tracer().Infof("glyph table %s: font %s, widths %v", tableFile, table.FontName, table.Widths())
		return table, table.FontName, nil
	}

	fontPath, err := img2glyph.FindFont(fontSel)
	if err != nil {
		return nil, "", err
	}
	var candidates []rune
	if charset != "" {
		candidates = img2glyph.ParseCharset(charset)
	}
	font, err := img2glyph.LoadTrueTypeGlyphs(fontPath, candidates)
	if err != nil {
		return nil, "", err
	}
	return font, font.Name(), nil
}

// checkGlyphTable fails when source is a glyph table computed without
// the region size; every region would come out as a placeholder.
func checkGlyphTable(source img2glyph.GlyphSource, size int) error {
	table, ok := source.(*img2glyph.GlyphTable)
	if !ok || table.HasWidth(size) {
		return nil
	}
	return fmt.Errorf("glyph table has no glyphs at %dpx (widths %v); use -size with one of them",
		size, table.Widths())
}

// missingRegionWidths lists the region widths the partitioning produces
// that a glyph table holds no bitmaps for: the truncated right edge column
// under -partial, or the whole image when it is narrower than the region.
func missingRegionWidths(source img2glyph.GlyphSource, imageWidth, imageHeight, size int, keepPartial bool) []int {
	table, ok := source.(*img2glyph.GlyphTable)
	if !ok {
		return nil
	}
	var missing []int
	seen := make(map[int]bool)
	for _, r := range img2glyph.Partition(imageWidth, imageHeight, size, size, keepPartial) {
		if seen[r.Width] {
			continue
		}
		seen[r.Width] = true
		if !table.HasWidth(r.Width) {
			missing = append(missing, r.Width)
		}
	}
	return missing
}

// applyEnv loads the environment file, if present, and copies GLYPHIFY_*
// values into flags that were not set explicitly.
func applyEnv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		explicit[f.Name] = true
	})

	for name, env := range envOverrides {
		value, ok := os.LookupEnv(env)
		if !ok || explicit[name] {
			continue
		}
		if err := flag.Set(name, value); err != nil {
			return fmt.Errorf("%s=%q: %w", env, value, err)
		}
	}
	return nil
}

// parseCell reads a "row,col" grid position.
func parseCell(s string) (row, col int, err error) {
	r, c, ok := strings.Cut(s, ",")
	if ok {
		row, err = strconv.Atoi(strings.TrimSpace(r))
	}
	if ok && err == nil {
		col, err = strconv.Atoi(strings.TrimSpace(c))
	}
	if !ok || err != nil || row < 0 || col < 0 {
		return 0, 0, fmt.Errorf("region %q: want row,col with non-negative numbers", s)
	}
	return row, col, nil
}

func parseTraceLevel(level string) tracing.TraceLevel {
	switch strings.ToLower(level) {
	case "debug":
		return tracing.LevelDebug
	case "error":
		return tracing.LevelError
	default:
		return tracing.LevelInfo
	}
}
