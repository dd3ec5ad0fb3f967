package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/wbrown/tdfbundle"
	"github.com/wbrown/tdfbundle/imageutil"
)

func main() {
	bundleFile := flag.String("bundle", "",
		"Path to the font bundle (required)")
	list := flag.Bool("list", false,
		"List the fonts in the bundle")
	filter := flag.String("filter", "",
		"List the fonts that can render this text")
	fontKey := flag.String("font", "",
		"Key of the font to render with, e.g. blocks/Block")
	text := flag.String("text", "",
		"Text to render; \\n starts a new line (default: remaining arguments)")
	measure := flag.Bool("measure", false,
		"Print the pixel size of the rendered text")
	outputFile := flag.String("output", "",
		"Path to save the image (png, jpg, gif, bmp, tiff); "+
			"if not specified, prints ANSI to stdout")
	scale := flag.Int("scale", 1,
		"Integer scale factor for image output")
	align := flag.String("align", "left",
		"Line alignment: left, center or right")
	background := flag.String("bg", "#000000",
		"Background colour of uncovered pixels")
	backdropFile := flag.String("bg-image", "",
		"Image stretched behind the text (image output only)")
	minSpace := flag.Uint("min-space", 3,
		"Width in cells of a space the font does not define")
	lineGap := flag.Uint("line-gap", 0,
		"Extra pixels between lines")
	glyphsPath := flag.String("glyphs", "",
		"Character bitmaps: a .glyphs file or a TTF font (default: built in)")
	colorTable := flag.String("colors", tdfbundle.DefaultColorTableName,
		"Colour table: embedded name or path to a JSON file")
	verbose := flag.Bool("v", false,
		"Print every diagnostic")
	flag.Parse()

	if *bundleFile == "" {
		fmt.Println("Please provide the bundle using the -bundle flag")
		flag.PrintDefaults()
		os.Exit(1)
	}

	data, err := os.ReadFile(*bundleFile)
	if err != nil {
		log.Fatalf("Error reading bundle: %v", err)
	}
	b, diags, err := tdfbundle.Load(data)
	if err != nil {
		log.Fatalf("Error loading bundle: %v", err)
	}
	report(diags, *verbose)

	if *list {
		listFonts(b, b.Fonts())
		return
	}
	if *filter != "" {
		listFonts(b, b.FilterFontsSupporting(*filter))
		return
	}

	if *fontKey == "" {
		fmt.Println("Please choose a font with -font (see -list)")
		os.Exit(1)
	}
	if *text == "" {
		*text = strings.Join(flag.Args(), " ")
	}
	*text = strings.ReplaceAll(*text, `\n`, "\n")

	alignment, err := tdfbundle.ParseAlign(*align)
	if err != nil {
		log.Fatal(err)
	}
	bg, err := parseColor(*background)
	if err != nil {
		log.Fatal(err)
	}
	colors, err := tdfbundle.LoadColorTable(*colorTable)
	if err != nil {
		log.Fatalf("Error loading colour table: %v", err)
	}
	opts := []tdfbundle.RendererOption{
		tdfbundle.WithAlign(alignment),
		tdfbundle.WithBackground(bg),
		tdfbundle.WithMinSpaceWidth(*minSpace),
		tdfbundle.WithExtraLineGap(*lineGap),
		tdfbundle.WithColorTable(colors),
	}
	if *glyphsPath != "" {
		fb, err := tdfbundle.LoadFontBitmaps(*glyphsPath)
		if err != nil {
			log.Fatalf("Error loading glyphs: %v", err)
		}
		opts = append(opts, tdfbundle.WithBitmaps(fb))
	}
	if *backdropFile != "" {
		backdrop, err := imageutil.LoadImage(*backdropFile)
		if err != nil {
			log.Fatalf("Error loading backdrop: %v", err)
		}
		opts = append(opts, tdfbundle.WithBackdrop(backdrop))
	}
	r := tdfbundle.NewRenderer(b, opts...)

	if *measure {
		size, err := r.Measure(*fontKey, *text)
		if err != nil {
			log.Fatalf("Error measuring text: %v", err)
		}
		fmt.Printf("%dx%d\n", size.X, size.Y)
		return
	}

	if *outputFile != "" {
		img, diags, err := r.Render(*fontKey, *text)
		if err != nil {
			log.Fatalf("Error rendering text: %v", err)
		}
		report(diags, *verbose)
		out := imageutil.Scale(img, *scale)
		if err := imageutil.SaveImage(out, *outputFile); err != nil {
			log.Fatalf("Error writing image: %v", err)
		}
		fmt.Printf("Image written to %s (%dx%d)\n", *outputFile, out.Width(), out.Height())
		report(b.Diagnostics(), *verbose)
		return
	}

	art, diags, err := r.RenderANSI(*fontKey, *text)
	if err != nil {
		log.Fatalf("Error rendering text: %v", err)
	}
	report(diags, *verbose)
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if width, _, err := term.GetSize(fd); err == nil {
			layout, err := r.Layout(*fontKey, *text)
			if err == nil && layout.Width/tdfbundle.CellWidth > width {
				fmt.Fprintf(os.Stderr, "warning: %d columns wide, terminal has %d\n",
					layout.Width/tdfbundle.CellWidth, width)
			}
		}
	}
	fmt.Print(art)
	report(b.Diagnostics(), *verbose)
}

func listFonts(b *tdfbundle.Bundle, keys []string) {
	for _, key := range keys {
		info, err := b.FontInfo(key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", key, err)
			continue
		}
		fmt.Printf("%-32s spacing %2d  palette %3d  %s\n",
			info.Key, info.Spacing, info.PaletteSize, info.Chars)
	}
}

// report prints diagnostics to stderr, or just how many there were.
func report(diags tdfbundle.Diagnostics, verbose bool) {
	if len(diags) == 0 {
		return
	}
	if !verbose {
		fmt.Fprintf(os.Stderr, "warning: %d issues (use -v for details)\n", len(diags))
		return
	}
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "warning: %s\n", d)
	}
}

func parseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: want #RRGGBB", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
