package app

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/hajimehoshi/ebiten/v2"

	"influencemap/engine"
	"influencemap/raster"
)

// MapInfo represents the overall map configuration
type MapInfo struct {
	Path   string
	Format string
	Width  int // Map width in pixels
	Height int // Map height in pixels
}

// MapManager loads the map image and owns the GPU textures drawn for it.
type MapManager struct {
	mapInfo        *MapInfo
	baseImage      *ebiten.Image
	overlayImage   *ebiten.Image
	overlayVersion uint64
	premul         []byte
}

// NewMapManager creates a new map manager instance
func NewMapManager() *MapManager {
	return &MapManager{}
}

// DecodeMap decodes any registered image format into a raster buffer.
func DecodeMap(r io.Reader) (*raster.Buffer, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode map image: %w", err)
	}
	return raster.FromImage(img), format, nil
}

// LoadMapFile decodes the map image at path. PNG, JPEG, GIF, BMP, TIFF and
// WebP are supported.
func (mm *MapManager) LoadMapFile(path string) (*raster.Buffer, error) {
	fmt.Printf("[MAP] Loading map image %s\n", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open map file: %w", err)
	}
	defer file.Close()

	buf, format, err := DecodeMap(file)
	if err != nil {
		return nil, err
	}
	mm.mapInfo = &MapInfo{Path: path, Format: format, Width: buf.Width(), Height: buf.Height()}
	fmt.Printf("[MAP] Map loaded successfully: %dx%d pixels (%s)\n", buf.Width(), buf.Height(), format)
	return buf, nil
}

// GetMapInfo returns the loaded map information
func (mm *MapManager) GetMapInfo() *MapInfo {
	return mm.mapInfo
}

// Textures returns the base and overlay textures for m, re-uploading the
// overlay when its version changed since the last frame.
func (mm *MapManager) Textures(m *engine.Map) (base, overlay *ebiten.Image) {
	if mm.baseImage == nil {
		mm.baseImage = ebiten.NewImageFromImage(m.Base())
	}
	img := m.OverlayRaster()
	if img == nil {
		return mm.baseImage, nil
	}
	if mm.overlayImage == nil {
		b := img.Bounds()
		mm.overlayImage = ebiten.NewImage(b.Dx(), b.Dy())
		mm.overlayVersion = 0
	}
	if v := m.OverlayVersion(); v != mm.overlayVersion {
		mm.premul = premultiply(mm.premul, img.Pix)
		mm.overlayImage.WritePixels(mm.premul)
		mm.overlayVersion = v
	}
	return mm.baseImage, mm.overlayImage
}

// premultiply converts non-premultiplied RGBA bytes to the premultiplied form
// ebiten expects, reusing dst when it is large enough.
func premultiply(dst, src []byte) []byte {
	if cap(dst) < len(src) {
		dst = make([]byte, len(src))
	}
	dst = dst[:len(src)]
	for i := 0; i+3 < len(src); i += 4 {
		a := uint32(src[i+3])
		dst[i] = byte(uint32(src[i]) * a / 255)
		dst[i+1] = byte(uint32(src[i+1]) * a / 255)
		dst[i+2] = byte(uint32(src[i+2]) * a / 255)
		dst[i+3] = byte(a)
	}
	return dst
}

// Cleanup disposes the textures.
func (mm *MapManager) Cleanup() {
	if mm.baseImage != nil {
		mm.baseImage.Deallocate()
		mm.baseImage = nil
	}
	if mm.overlayImage != nil {
		mm.overlayImage.Deallocate()
		mm.overlayImage = nil
	}
}
