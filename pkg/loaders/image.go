package loaders

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"io"
	"os"

	_ "golang.org/x/image/bmp" // BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // TIFF decoder

	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// ErrEmptyImage is returned for images without pixels
var ErrEmptyImage = errors.New("loaders: image has no pixels")

// LoadRGB loads a PNG, JPEG, BMP or TIFF file into a row-major buffer of
// 8-bit RGB triples
func LoadRGB(filename string) (width, height int, pixels []byte, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	width, height, pixels, err = DecodeRGB(file)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("%s: %w", filename, err)
	}
	return width, height, pixels, nil
}

// DecodeRGB decodes an image from r, detecting the format from its header
func DecodeRGB(r io.Reader) (width, height int, pixels []byte, err error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("failed to decode image: %w", err)
	}
	width, height, pixels = ToRGB(img)
	if width == 0 || height == 0 {
		return 0, 0, nil, ErrEmptyImage
	}
	return width, height, pixels, nil
}

// ToRGB flattens img into RGB triples, dropping alpha
func ToRGB(img image.Image) (width, height int, pixels []byte) {
	bounds := img.Bounds()
	width, height = bounds.Dx(), bounds.Dy()
	pixels = make([]byte, 0, width*height*3)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// RGBA returns 16-bit channels
			r, g, b, _ := img.At(x, y).RGBA()
			pixels = append(pixels, byte(r>>8), byte(g>>8), byte(b>>8))
		}
	}
	return width, height, pixels
}

// LoadImageTexture loads a file as an image texture descriptor
func LoadImageTexture(filename string) (scene.ImageTexture, error) {
	width, height, pixels, err := LoadRGB(filename)
	if err != nil {
		return scene.ImageTexture{}, err
	}
	return scene.ImageTexture{Width: width, Height: height, Pixels: pixels}, nil
}

// Scale resizes img to width x height with nearest-neighbour sampling, which
// keeps individual render samples visible when enlarging a preview
func Scale(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
