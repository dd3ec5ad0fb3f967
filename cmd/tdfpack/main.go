package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/wbrown/tdfbundle"
)

func main() {
	inputDir := flag.String("input", "",
		"Directory containing the .tdf files to pack (required)")
	outputFile := flag.String("output", "",
		"Path to save the bundle (required)")
	writeDigest := flag.Bool("digest", false,
		"Write the BLAKE2b digest of the bundle to <output>.blake2b")
	verbose := flag.Bool("v", false,
		"Print every diagnostic instead of a summary")
	flag.Parse()

	if *inputDir == "" || *outputFile == "" {
		fmt.Println("Both -input and -output flags are required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	begin := time.Now()
	bundle, diags, err := tdfbundle.PackDir(ctx, *inputDir)
	reportDiagnostics(diags, *verbose)
	if err != nil {
		log.Fatalf("Failed to pack %s: %v", *inputDir, err)
	}

	if err := os.WriteFile(*outputFile, bundle, 0644); err != nil {
		log.Fatalf("Failed to write bundle: %v", err)
	}

	b, _, err := tdfbundle.Load(bundle)
	if err != nil {
		log.Fatalf("Packed bundle does not load: %v", err)
	}
	fmt.Printf("Packed %d fonts into %s (%.2f KB) in %v\n",
		len(b.Fonts()), *outputFile, float64(len(bundle))/1024, time.Since(begin))

	if *writeDigest {
		digest := tdfbundle.Digest(bundle)
		if err := os.WriteFile(*outputFile+".blake2b", []byte(digest+"\n"), 0644); err != nil {
			log.Fatalf("Failed to write digest: %v", err)
		}
		fmt.Printf("Digest: %s\n", digest)
	}
}

// reportDiagnostics prints every diagnostic, or a count per kind.
func reportDiagnostics(diags tdfbundle.Diagnostics, verbose bool) {
	if verbose {
		for _, d := range diags {
			fmt.Fprintf(os.Stderr, "warning: %s\n", d)
		}
		return
	}
	counts := make(map[tdfbundle.DiagnosticKind]int)
	var order []tdfbundle.DiagnosticKind
	for _, d := range diags {
		if counts[d.Kind] == 0 {
			order = append(order, d.Kind)
		}
		counts[d.Kind]++
	}
	for _, kind := range order {
		fmt.Fprintf(os.Stderr, "warning: %d x %s (use -v for details)\n", counts[kind], kind)
	}
}
