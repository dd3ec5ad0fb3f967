package tdfbundle

import (
	"embed"
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"sync"
)

//go:embed colordata/vga16.json
var colorFS embed.FS

// DefaultColorTableName names the built-in VGA text mode colours.
const DefaultColorTableName = "vga16"

// vgaToANSI maps the low three bits of a VGA colour index to the ANSI
// colour number: VGA orders blue, green, red where ANSI orders red,
// green, blue.
var vgaToANSI = [8]int{0, 4, 2, 6, 1, 5, 3, 7}

// ColorTable resolves attribute colour indices to RGB. Foreground has all
// 16 VGA colours; Background has the eight a background attribute can
// address.
type ColorTable struct {
	Name       string
	Foreground [16]color.RGBA
	Background [8]color.RGBA
}

// ansiCode returns the SGR code of a VGA colour index.
func ansiCode(index int, background bool) int {
	base := vgaToANSI[index&7]
	switch {
	case background:
		return 40 + base
	case index >= 8:
		return 90 + base
	default:
		return 30 + base
	}
}

// ForegroundColor returns the foreground colour of an attribute.
func (t *ColorTable) ForegroundColor(attr byte) color.RGBA {
	return t.Foreground[Foreground(attr)]
}

// BackgroundColor returns the background colour of an attribute.
func (t *ColorTable) BackgroundColor(attr byte) color.RGBA {
	return t.Background[Background(attr)]
}

// NearestBackground returns the background colour index closest to c by
// squared RGB distance.
func (t *ColorTable) NearestBackground(c color.RGBA) int {
	best, bestDist := 0, -1
	for i, bg := range t.Background {
		dr := int(c.R) - int(bg.R)
		dg := int(c.G) - int(bg.G)
		db := int(c.B) - int(bg.B)
		if d := dr*dr + dg*dg + db*db; bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

var defaultColors = sync.OnceValue(func() *ColorTable {
	t, err := LoadColorTable(DefaultColorTableName)
	if err != nil {
		panic(fmt.Sprintf("embedded colour table: %v", err))
	}
	return t
})

// DefaultColorTable returns the standard VGA 16-colour table.
func DefaultColorTable() *ColorTable {
	return defaultColors()
}

// LoadColorTable reads a colour table by name from the embedded tables, or
// from a JSON file on disk. The JSON maps ANSI SGR codes to "#RRGGBB".
func LoadColorTable(name string) (*ColorTable, error) {
	// First, try the VFS.
	data, vfsErr := colorFS.ReadFile(fmt.Sprintf("colordata/%s.json", name))
	if vfsErr != nil {
		// If the VFS fails, try the filesystem.
		var fsErr error
		data, fsErr = os.ReadFile(name)
		if fsErr != nil {
			return nil, fmt.Errorf("error reading colour table: %w", fsErr)
		}
	}
	t, err := ParseColorTable(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	t.Name = name
	return t, nil
}

// ParseColorTable decodes a JSON colour table. Codes 30-37 and 90-97 are
// required. Background codes 40-47 are optional and default to the
// matching normal intensity foreground colour.
func ParseColorTable(data []byte) (*ColorTable, error) {
	var colorMap map[string]string
	if err := json.Unmarshal(data, &colorMap); err != nil {
		return nil, fmt.Errorf("error unmarshalling JSON: %w", err)
	}

	colors := make(map[int]color.RGBA, len(colorMap))
	for code, hexColor := range colorMap {
		n, err := strconv.Atoi(code)
		if err != nil {
			return nil, fmt.Errorf("unknown color code type: %s", code)
		}
		c, err := parseHexColor(hexColor)
		if err != nil {
			return nil, err
		}
		colors[n] = c
	}

	t := &ColorTable{}
	for i := range t.Foreground {
		c, ok := colors[ansiCode(i, false)]
		if !ok {
			return nil, fmt.Errorf("missing foreground code %d", ansiCode(i, false))
		}
		t.Foreground[i] = c
	}
	for i := range t.Background {
		c, ok := colors[ansiCode(i, true)]
		if !ok {
			c = t.Foreground[i]
		}
		t.Background[i] = c
	}
	return t, nil
}

func parseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("error parsing color %s: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("error parsing color %s: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
