package visualtest

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// ErrSizeMismatch is returned when two images are compared without a
// region and their bounds differ.
var ErrSizeMismatch = errors.New("visualtest: image dimensions differ")

// CompareResult contains the results of an image comparison
type CompareResult struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	MaxDifference   int // Max color channel difference found
}

// CompareOptions configures the image comparison
type CompareOptions struct {
	// Tolerance: maximum allowed difference per color channel (0-255)
	Tolerance int

	// FuzzyRadius: if > 0, a pixel matches if it matches any pixel within this radius
	FuzzyRadius int

	// MaxDifferentPercent: if > 0, pass if the percentage of different pixels is <= this value
	MaxDifferentPercent float64

	// Region limits the comparison. It must lie inside both images.
	Region image.Rectangle

	// DiffImagePath, when set, receives an image highlighting differences
	// if the comparison fails.
	DiffImagePath string
}

// DefaultOptions returns sensible defaults for image comparison
func DefaultOptions() CompareOptions {
	return CompareOptions{Tolerance: 2}
}

// CompareFiles decodes two PNG files and compares them.
func CompareFiles(actualPath, expectedPath string, opts CompareOptions) (*CompareResult, error) {
	actual, err := loadPNG(actualPath)
	if err != nil {
		return nil, err
	}
	expected, err := loadPNG(expectedPath)
	if err != nil {
		return nil, err
	}
	return Compare(actual, expected, opts)
}

// Compare compares two images pixel by pixel.
func Compare(actual, expected image.Image, opts CompareOptions) (*CompareResult, error) {
	region := opts.Region
	if region.Empty() {
		if actual.Bounds() != expected.Bounds() {
			return &CompareResult{}, fmt.Errorf("%w: actual=%v, expected=%v",
				ErrSizeMismatch, actual.Bounds(), expected.Bounds())
		}
		region = expected.Bounds()
	} else if !region.In(actual.Bounds()) || !region.In(expected.Bounds()) {
		return &CompareResult{}, fmt.Errorf("%w: region %v outside actual=%v or expected=%v",
			ErrSizeMismatch, region, actual.Bounds(), expected.Bounds())
	}

	result := &CompareResult{
		Match:       true,
		TotalPixels: region.Dx() * region.Dy(),
	}

	var diffImg *image.RGBA
	if opts.DiffImagePath != "" {
		diffImg = image.NewRGBA(region)
	}

	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			a := channels(actual.At(x, y))
			diff := distance(a, channels(expected.At(x, y)))
			if diff > result.MaxDifference {
				result.MaxDifference = diff
			}

			gray := color.RGBA{uint8(a[0]), uint8(a[0]), uint8(a[0]), 255}
			if diff > opts.Tolerance &&
				!(opts.FuzzyRadius > 0 && fuzzyMatch(a, expected, x, y, opts.FuzzyRadius, opts.Tolerance, region)) {
				result.Match = false
				result.DifferentPixels++
				gray = color.RGBA{255, 0, 0, 255}
			}
			if diffImg != nil {
				diffImg.Set(x, y, gray)
			}
		}
	}

	if !result.Match && opts.MaxDifferentPercent > 0 {
		pct := float64(result.DifferentPixels) / float64(result.TotalPixels) * 100
		if pct <= opts.MaxDifferentPercent {
			result.Match = true
		}
	}

	if diffImg != nil && !result.Match {
		if err := SavePNG(diffImg, opts.DiffImagePath); err != nil {
			return result, fmt.Errorf("failed to save diff image: %w", err)
		}
	}
	return result, nil
}

// fuzzyMatch checks if the actual pixel matches any expected pixel within radius
func fuzzyMatch(a [4]int, expected image.Image, x, y, radius, tolerance int, bounds image.Rectangle) bool {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			p := image.Pt(x+dx, y+dy)
			if !p.In(bounds) {
				continue
			}
			if distance(a, channels(expected.At(p.X, p.Y))) <= tolerance {
				return true
			}
		}
	}
	return false
}

// channels returns the 8-bit RGBA channels of c.
func channels(c color.Color) [4]int {
	r, g, b, a := c.RGBA()
	return [4]int{int(r >> 8), int(g >> 8), int(b >> 8), int(a >> 8)}
}

// distance is the largest per-channel difference.
func distance(a, b [4]int) int {
	d := 0
	for i := range a {
		d = max(d, abs(a[i]-b[i]))
	}
	return d
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func loadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// SavePNG saves an image as PNG
func SavePNG(img image.Image, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}
