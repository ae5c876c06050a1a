package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// CropResult contains a cropped region encoded as PNG.
type CropResult struct {
	EncodedImage
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// CropRegion extracts the inclusive box (x1,y1)-(x2,y2) from img, clamped to
// the image bounds, optionally rescaled. Region boxes carry a one pixel pad
// that may touch the border, hence the clamping instead of rejection.
func CropRegion(img image.Image, x1, y1, x2, y2 int, scale float64) (*CropResult, error) {
	if x1 > x2 || y1 > y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be <= x2, y1 must be <= y2")
	}

	bounds := img.Bounds()
	rect := image.Rect(x1, y1, x2+1, y2+1).Add(bounds.Min).Intersect(bounds)
	if rect.Empty() {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			x1, y1, x2, y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}

	cropped := imaging.Crop(img, rect)

	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		if newWidth < 1 {
			newWidth = 1
		}
		if newHeight < 1 {
			newHeight = 1
		}
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.NearestNeighbor)
	}

	enc, err := EncodePNG(cropped)
	if err != nil {
		return nil, err
	}

	return &CropResult{
		EncodedImage: *enc,
		X1:           rect.Min.X - bounds.Min.X,
		Y1:           rect.Min.Y - bounds.Min.Y,
		X2:           rect.Max.X - 1 - bounds.Min.X,
		Y2:           rect.Max.Y - 1 - bounds.Min.Y,
	}, nil
}
