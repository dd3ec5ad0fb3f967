package tdfbundle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/wbrown/tdfbundle/tdf"
)

// SourceExt is the file extension PackDir picks up.
const SourceExt = ".tdf"

// Source is one TheDraw container to pack.
type Source struct {
	Name string
	Data []byte
}

// parsedFont is a colour font extracted from a source, not yet encoded.
type parsedFont struct {
	name    string
	spacing byte
	glyphs  []tdf.RawGlyph
}

type parsedSource struct {
	stem  string
	fonts []parsedFont
	diags Diagnostics
}

// PackDir packs every .tdf file in dir. Unreadable files are reported and
// skipped; an unreadable directory is an error.
func PackDir(ctx context.Context, dir string) ([]byte, Diagnostics, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var diags Diagnostics
	var sources []Source
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.EqualFold(filepath.Ext(e.Name()), SourceExt) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			diags = append(diags, Diagnostic{
				Kind:    KindSourceSkipped,
				Source:  e.Name(),
				Message: err.Error(),
			})
			continue
		}
		sources = append(sources, Source{Name: e.Name(), Data: data})
	}

	bundle, packDiags, err := PackSources(ctx, sources)
	return bundle, append(diags, packDiags...), err
}

// PackSources parses, encodes and writes all colour fonts found in
// sources. Sources are parsed concurrently but fonts are keyed and written
// in source-name order, so the output only depends on the input set.
// Fonts that cannot be encoded are reported and left out; ErrNoFonts is
// returned when nothing is left.
func PackSources(ctx context.Context, sources []Source) ([]byte, Diagnostics, error) {
	sorted := append([]Source(nil), sources...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	parsed := make([]parsedSource, len(sorted))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range sorted {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			parsed[i] = parseSource(&sorted[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var diags Diagnostics
	var fonts []FontRecord
	used := make(map[string]int)  // base key -> fonts seen with it
	taken := make(map[string]bool) // keys already assigned
	for _, src := range parsed {
		diags = append(diags, src.diags...)
		for i, pf := range src.fonts {
			base := fontKey(src.stem, pf.name, i)
			rec, fontDiags, err := BuildFont(base, pf.spacing, pf.glyphs)
			diags = append(diags, fontDiags...)
			if err != nil {
				kind := KindFontSkipped
				if errors.Is(err, ErrPaletteOverflow) {
					kind = KindPaletteOverflow
				}
				diags.add(kind, base, 0, "%v", err)
				continue
			}
			used[base]++
			if taken[base] {
				n := max(used[base], 2)
				for taken[base+"#"+strconv.Itoa(n)] {
					n++
				}
				used[base] = n
				rec.Key = base + "#" + strconv.Itoa(n)
				diags.add(KindDuplicateKey, base, 0, "renamed to %q", rec.Key)
			}
			taken[rec.Key] = true
			fonts = append(fonts, *rec)
		}
	}
	if len(fonts) == 0 {
		return nil, diags, ErrNoFonts
	}

	bundle, err := WriteBundle(fonts)
	if err != nil {
		return nil, diags, err
	}
	return bundle, diags, nil
}

// parseSource scans one container and extracts the glyphs of every colour
// font in it.
func parseSource(src *Source) parsedSource {
	out := parsedSource{stem: sourceStem(src.Name)}

	metas, warnings := tdf.ScanHeaders(src.Data)
	out.diags = append(out.diags, fromWarnings(src.Name, warnings)...)

	for i := range metas {
		glyphs, warnings := tdf.ExtractGlyphs(src.Data, &metas[i])
		extracted := make(map[byte]bool, len(glyphs))
		for _, g := range glyphs {
			extracted[g.Char] = true
		}
		// Unterminated glyphs are reported again by BuildFont.
		var skipped []tdf.Warning
		for _, w := range warnings {
			if w.Code != tdf.WarnUnterminated || !extracted[w.Char] {
				skipped = append(skipped, w)
			}
		}
		out.diags = append(out.diags, fromWarnings(src.Name, skipped)...)

		out.fonts = append(out.fonts, parsedFont{
			name:    metas[i].Name,
			spacing: metas[i].Spacing,
			glyphs:  glyphs,
		})
	}
	if len(metas) == 0 {
		out.diags = append(out.diags, Diagnostic{
			Kind:    KindSourceSkipped,
			Source:  src.Name,
			Message: "no colour fonts found",
		})
	}
	return out
}

// sourceStem is the lower-cased file name without directory or extension.
func sourceStem(name string) string {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ToValidUTF8(strings.ToLower(stem), "_")
}

// fontKey derives a font's key from its source and internal name.
func fontKey(stem, name string, index int) string {
	name = strings.ToValidUTF8(strings.ReplaceAll(name, "\x00", ""), "_")
	if name == "" {
		name = strconv.Itoa(index)
	}
	if stem == "" {
		stem = "_"
	}
	return stem + "/" + name
}
