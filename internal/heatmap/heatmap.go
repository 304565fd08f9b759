package heatmap

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Record is one exported website entry, matching the API export feed.
type Record struct {
	URL       string `json:"url"`
	TimeUsed  int    `json:"timeUsed"`
	TimeLimit int    `json:"timeLimit"`
}

const (
	cellWidth   = 360
	cellHeight  = 48
	labelWidth  = 320
	marginX     = 24
	titleHeight = 64
	footerPad   = 24
)

// UsagePercent is the cell intensity: minutes used over the daily budget,
// capped at 100. A non-positive limit renders as zero rather than dividing
// by it.
func UsagePercent(used, limit int) float64 {
	if limit <= 0 {
		return 0
	}
	p := float64(used) / float64(limit) * 100
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// colormap stops, light yellow through deep red.
var stops = []color.RGBA{
	{R: 255, G: 255, B: 178, A: 255},
	{R: 254, G: 204, B: 92, A: 255},
	{R: 253, G: 141, B: 60, A: 255},
	{R: 240, G: 59, B: 32, A: 255},
	{R: 189, G: 0, B: 38, A: 255},
}

// Color maps a usage percentage onto the yellow-to-red gradient.
func Color(percent float64) color.RGBA {
	if percent <= 0 {
		return stops[0]
	}
	if percent >= 100 {
		return stops[len(stops)-1]
	}

	span := 100.0 / float64(len(stops)-1)
	idx := int(percent / span)
	frac := (percent - float64(idx)*span) / span

	lo, hi := stops[idx], stops[idx+1]
	lerp := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*frac)
	}
	return color.RGBA{
		R: lerp(lo.R, hi.R),
		G: lerp(lo.G, hi.G),
		B: lerp(lo.B, hi.B),
		A: 255,
	}
}

// SortByUsage orders records by minutes used, heaviest first, so the worst
// offenders sit at the top of the chart.
func SortByUsage(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].TimeUsed > records[j].TimeUsed
	})
}

// Render draws one colored cell per website with a used/limit label, after
// sorting by usage.
func Render(records []Record) (image.Image, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no records to render")
	}

	sorted := make([]Record, len(records))
	copy(sorted, records)
	SortByUsage(sorted)

	width := marginX + labelWidth + cellWidth + marginX
	height := titleHeight + cellHeight*len(sorted) + footerPad

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	titleFont, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse title font: %w", err)
	}
	bodyFont, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse body font: %w", err)
	}

	dc.SetFontFace(truetype.NewFace(titleFont, &truetype.Options{Size: 22}))
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored("Website Usage Statistics", float64(width)/2, titleHeight/2, 0.5, 0.5)

	labelFace := truetype.NewFace(bodyFont, &truetype.Options{Size: 14})
	cellFace := truetype.NewFace(titleFont, &truetype.Options{Size: 14})

	for i, rec := range sorted {
		y := float64(titleHeight + i*cellHeight)

		dc.SetFontFace(labelFace)
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(rec.URL, marginX, y+cellHeight/2, 0, 0.5)

		cellX := float64(marginX + labelWidth)
		dc.SetColor(Color(UsagePercent(rec.TimeUsed, rec.TimeLimit)))
		dc.DrawRectangle(cellX, y, cellWidth, cellHeight)
		dc.Fill()

		dc.SetRGB(0.5, 0.5, 0.5)
		dc.DrawRectangle(cellX, y, cellWidth, cellHeight)
		dc.Stroke()

		dc.SetFontFace(cellFace)
		dc.SetRGB(0, 0, 0)
		label := fmt.Sprintf("%d/%d min", rec.TimeUsed, rec.TimeLimit)
		dc.DrawStringAnchored(label, cellX+cellWidth/2, y+cellHeight/2, 0.5, 0.5)
	}

	return dc.Image(), nil
}
