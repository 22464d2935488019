package gui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

const iconSize = 22

var iconBars = []int{6, 12, 18, 12, 6}

// iconPNG draws the app and tray icon: five bars, tallest in the middle.
func iconPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	for i, h := range iconBars {
		x0 := 2 + i*4
		y0 := (iconSize - h) / 2
		for y := y0; y < y0+h; y++ {
			// brighter towards the centre line
			t := float64(abs(2*y-iconSize+1)) / float64(iconSize)
			c := color.RGBA{255, uint8(200 - t*150), 0, 255}
			for x := x0; x < x0+3; x++ {
				img.Set(x, y, c)
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
