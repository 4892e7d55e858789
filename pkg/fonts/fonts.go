// Package fonts locates a usable label font for raster rendering.
//
// Nothing is embedded in the binary; the package walks a short candidate
// list of common system fonts via findfont and parses the first match.
// Callers must tolerate a nil face and render without labels.
package fonts

import (
	"os"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// candidates are tried in order. DejaVu ships with most Linux distros,
// Arial and Helvetica cover macOS and Windows.
var candidates = []string{
	"DejaVuSans.ttf",
	"Arial.ttf",
	"arial.ttf",
	"Helvetica.ttf",
	"LiberationSans-Regular.ttf",
}

var (
	loadOnce   sync.Once
	loadedFont *truetype.Font
)

// load parses the first candidate font found on the system, once.
func load() *truetype.Font {
	loadOnce.Do(func() {
		for _, name := range candidates {
			path, err := findfont.Find(name)
			if err != nil {
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			f, err := truetype.Parse(data)
			if err != nil {
				continue
			}
			loadedFont = f
			return
		}
	})
	return loadedFont
}

// Face returns a label face at the given point size, or nil when no usable
// system font exists.
func Face(size float64) font.Face {
	f := load()
	if f == nil {
		return nil
	}
	return truetype.NewFace(f, &truetype.Options{Size: size})
}

// Available reports whether a label font could be located.
func Available() bool {
	return load() != nil
}
