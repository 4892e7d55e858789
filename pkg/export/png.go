package export

import (
	"bytes"
	"image/color"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/ShantaRam81/Nodes/pkg/errors"
	"github.com/ShantaRam81/Nodes/pkg/fonts"
	"github.com/ShantaRam81/Nodes/pkg/graph"
)

// Raster rendering parameters. The canvas is drawn at supersample scale and
// downsampled once for antialiasing.
const (
	pngMargin      = 48.0
	pngSupersample = 2.0
	pngMaxSide     = 8192
	pngFontSize    = 13.0
)

// RenderPNG rasterizes a positioned graph directly, without Graphviz.
// Positions are taken as-is; callers should settle or strict-place the graph
// first. Labels are skipped when no system font can be located.
func RenderPNG(nodes []*graph.Node, edges []*graph.Edge, opts Options) ([]byte, error) {
	if len(nodes) == 0 {
		return nil, errors.New(errors.ErrCodeExport, "cannot render an empty graph")
	}

	minX, minY, maxX, maxY := bounds(nodes)
	width := (maxX - minX) + 2*pngMargin
	height := (maxY - minY) + 2*pngMargin

	sw := int(math.Ceil(width * pngSupersample))
	sh := int(math.Ceil(height * pngSupersample))
	if sw > pngMaxSide || sh > pngMaxSide {
		return nil, errors.New(errors.ErrCodeExport, "layout extent too large for raster output")
	}

	dc := gg.NewContext(sw, sh)
	dc.SetColor(color.White)
	dc.Clear()
	dc.Scale(pngSupersample, pngSupersample)

	// Simulation coordinates map onto the canvas with the margin offset;
	// raster y grows downward, same as the simulation's.
	tx := func(x float64) float64 { return x - minX + pngMargin }
	ty := func(y float64) float64 { return y - minY + pngMargin }

	byID := make(map[string]*graph.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	dc.SetColor(color.RGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff})
	dc.SetLineWidth(1.2)
	for _, e := range edges {
		src, ok := byID[e.Source]
		if !ok {
			continue
		}
		dst, ok := byID[e.Target]
		if !ok {
			continue
		}
		dc.DrawLine(tx(src.X), ty(src.Y), tx(dst.X), ty(dst.Y))
		dc.Stroke()
	}

	face := fonts.Face(pngFontSize)
	if face != nil {
		dc.SetFontFace(face)
	}

	for _, n := range nodes {
		drawNode(dc, n, tx(n.X), ty(n.Y), opts, face != nil)
	}

	img := imaging.Resize(dc.Image(), int(math.Ceil(width)), 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(errors.ErrCodeExport, err, "encode png")
	}
	return buf.Bytes(), nil
}

func drawNode(dc *gg.Context, n *graph.Node, x, y float64, opts Options, withLabel bool) {
	r := n.Radius()

	dc.SetColor(categoryRGBA(n))
	switch {
	case n.IsFolder():
		dc.DrawRoundedRectangle(x-r, y-r*0.75, 2*r, 1.5*r, 4)
	case n.IsFileGroup():
		dc.DrawRectangle(x-r, y-r*0.75, 2*r, 1.5*r)
	default:
		dc.DrawCircle(x, y, r)
	}
	dc.FillPreserve()
	dc.SetColor(color.RGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xff})
	dc.SetLineWidth(1)
	dc.Stroke()

	if !withLabel {
		return
	}
	label := n.Name
	if opts.Detailed && n.SizeBytes > 0 {
		label = fmtLabel(n, true)
	}
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(label, x, y+r+pngFontSize*0.9, 0.5, 0.5)
}

// categoryRGBA mirrors the DOT fill scheme so both artifacts read the same.
func categoryRGBA(n *graph.Node) color.RGBA {
	switch {
	case n.IsFolder():
		return color.RGBA{R: 0xff, G: 0xff, B: 0xe0, A: 0xff} // lightyellow
	case n.IsFileGroup():
		return color.RGBA{R: 0xd3, G: 0xd3, B: 0xd3, A: 0xff} // lightgrey
	}
	switch n.Category {
	case graph.CategoryImage:
		return color.RGBA{R: 0xff, G: 0xb6, B: 0xc1, A: 0xff} // lightpink
	case graph.CategoryCode:
		return color.RGBA{R: 0xad, G: 0xd8, B: 0xe6, A: 0xff} // lightblue
	case graph.CategoryVideo:
		return color.RGBA{R: 0xdd, G: 0xa0, B: 0xdd, A: 0xff} // plum
	case graph.CategoryAudio:
		return color.RGBA{R: 0x98, G: 0xfb, B: 0x98, A: 0xff} // palegreen
	case graph.CategoryDocument:
		return color.RGBA{R: 0xf5, G: 0xde, B: 0xb3, A: 0xff} // wheat
	case graph.CategoryArchive:
		return color.RGBA{R: 0xf0, G: 0xe6, B: 0x8c, A: 0xff} // khaki
	default:
		return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
}

// bounds returns the bounding box of all node positions including their
// visual radii.
func bounds(nodes []*graph.Node) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		r := n.Radius()
		minX = math.Min(minX, n.X-r)
		minY = math.Min(minY, n.Y-r)
		maxX = math.Max(maxX, n.X+r)
		maxY = math.Max(maxY, n.Y+r)
	}
	return minX, minY, maxX, maxY
}
