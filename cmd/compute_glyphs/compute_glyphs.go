package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/wbrown/tdfbundle"
)

func main() {
	inputFont := flag.String("font", "", "Path to the input font file (required)")
	outputFile := flag.String("output", "", "Path to save the output glyph data file (required)")
	flag.Parse()

	if *inputFont == "" || *outputFile == "" {
		fmt.Println("Both -font and -output flags are required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	log.Printf("Computing glyphs for font: %s", *inputFont)

	fb, err := tdfbundle.LoadFontBitmaps(*inputFont)
	if err != nil {
		log.Fatalf("Failed to compute glyphs: %v", err)
	}

	log.Printf("Computed %d glyphs", fb.Len())

	f, err := os.Create(*outputFile)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *outputFile, err)
	}
	if err := fb.Encode(f); err != nil {
		f.Close()
		log.Fatalf("Failed to save glyph data: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Failed to write file: %v", err)
	}

	// Report file size
	fileInfo, err := os.Stat(*outputFile)
	if err == nil {
		log.Printf("Saved glyph data to %s (%.2f KB)", *outputFile, float64(fileInfo.Size())/1024)
	}

	baseName := strings.TrimSuffix(filepath.Base(*inputFont), filepath.Ext(*inputFont))
	suggestedName := strings.ToLower(strings.ReplaceAll(baseName, " ", "_")) + ".glyphs"
	log.Printf("Load it with: tdfrender -glyphs %s", suggestedName)
}
