package imageutil

import (
	"image"

	"golang.org/x/image/draw"
)

// Interpolation specifies the interpolation method for resizing.
type Interpolation int

const (
	// InterpolationNearest keeps hard pixel edges. It is the right choice
	// for upscaling character cell art.
	InterpolationNearest Interpolation = iota

	// InterpolationLinear uses bilinear interpolation.
	InterpolationLinear

	// InterpolationArea uses Catmull-Rom for high-quality downscaling.
	InterpolationArea
)

// Resize resizes an RGBA image to the specified dimensions using the
// given interpolation method.
func Resize(img *RGBAImage, width, height int, interp Interpolation) *RGBAImage {
	dst := NewRGBAImage(width, height)
	dstRect := image.Rect(0, 0, width, height)

	var scaler draw.Scaler
	switch interp {
	case InterpolationNearest:
		scaler = draw.NearestNeighbor
	case InterpolationLinear:
		scaler = draw.BiLinear
	case InterpolationArea:
		scaler = draw.CatmullRom
	default:
		scaler = draw.NearestNeighbor
	}

	scaler.Scale(dst.RGBA, dstRect, img.RGBA, img.Bounds(), draw.Src, nil)
	return dst
}

// Scale enlarges an image by an integer factor with nearest-neighbour
// sampling. Factors below 2 return img unchanged.
func Scale(img *RGBAImage, factor int) *RGBAImage {
	if factor < 2 {
		return img
	}
	return Resize(img, img.Width()*factor, img.Height()*factor, InterpolationNearest)
}

// Fit stretches an image to exactly width x height. Shrinking uses
// InterpolationArea and enlarging InterpolationLinear.
func Fit(img *RGBAImage, width, height int) *RGBAImage {
	if img.Width() == width && img.Height() == height {
		return img
	}
	interp := InterpolationLinear
	if width < img.Width() || height < img.Height() {
		interp = InterpolationArea
	}
	return Resize(img, width, height, interp)
}
