package main

import (
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

const upperHalf = "▀"

// halfBlocks renders img into cols x rows terminal cells. Each cell shows two
// vertically stacked pixels: the upper half block in the foreground colour
// and the lower pixel as background.
func halfBlocks(img image.Image, cols, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	b := img.Bounds()
	if b.Empty() {
		return ""
	}
	cellW := float64(b.Dx()) / float64(cols)
	pxH := float64(b.Dy()) / float64(rows*2)

	var sb strings.Builder
	for row := 0; row < rows; row++ {
		var (
			run      int
			runTop   string
			runBelow string
		)
		flush := func() {
			if run == 0 {
				return
			}
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(runTop)).
				Background(lipgloss.Color(runBelow))
			sb.WriteString(style.Render(strings.Repeat(upperHalf, run)))
			run = 0
		}
		for col := 0; col < cols; col++ {
			x0 := b.Min.X + int(float64(col)*cellW)
			x1 := b.Min.X + int(float64(col+1)*cellW)
			top := boxHex(img, x0, x1, b.Min.Y+int(float64(2*row)*pxH), b.Min.Y+int(float64(2*row+1)*pxH))
			below := boxHex(img, x0, x1, b.Min.Y+int(float64(2*row+1)*pxH), b.Min.Y+int(float64(2*row+2)*pxH))
			if run > 0 && (top != runTop || below != runBelow) {
				flush()
			}
			runTop, runBelow = top, below
			run++
		}
		flush()
		if row < rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// boxHex averages the pixels in [x0,x1) x [y0,y1) and returns the hex colour.
func boxHex(img image.Image, x0, x1, y0, y1 int) string {
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	var r, g, b, n uint64
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			r += uint64(cr)
			g += uint64(cg)
			b += uint64(cb)
			n++
		}
	}
	avg := color.RGBA64{R: uint16(r / n), G: uint16(g / n), B: uint16(b / n), A: 0xffff}
	c, _ := colorful.MakeColor(avg)
	return c.Hex()
}
