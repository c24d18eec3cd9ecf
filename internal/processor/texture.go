package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/woozymasta/satglobe/internal/config"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TextureQuality is the lossy WebP quality of globe textures.
const TextureQuality = 85

// TexturePath returns the output path of a texture inside dir.
func TexturePath(dir string, tex config.Texture) string {
	return filepath.Join(dir, tex.Name+".webp")
}

// ProcessTexture downloads or opens an equirectangular globe texture, scales it
// to tex.Width x tex.Width/2 and stores it as WebP in dir.
// Existing output is kept unless force is set.
func ProcessTexture(ctx context.Context, client *http.Client, tex config.Texture, dir string, force bool) error {
	outPath := TexturePath(dir, tex)

	if !force {
		if info, err := os.Stat(outPath); err == nil && info.Size() > 0 {
			log.Debug().Str("texture", tex.Name).Msg("Texture exists, skipping")
			return nil
		}
	}

	if tex.Width < 2 {
		return fmt.Errorf("texture %s: width %d too small", tex.Name, tex.Width)
	}

	srcImg, err := loadSourceImage(ctx, client, tex.Source)
	if err != nil {
		return fmt.Errorf("texture %s: %w", tex.Name, err)
	}

	bounds := srcImg.Bounds()
	log.Info().
		Str("texture", tex.Name).
		Int("width", bounds.Dx()).
		Int("height", bounds.Dy()).
		Int("target_width", tex.Width).
		Msg("Source texture loaded, resampling")

	// Equirectangular: width spans 360 degrees, height 180.
	dstImg := image.NewRGBA(image.Rect(0, 0, tex.Width, tex.Width/2))
	xdraw.CatmullRom.Scale(dstImg, dstImg.Bounds(), srcImg, bounds, draw.Over, nil)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := webp.Encode(f, dstImg, &webp.Options{Lossless: false, Quality: TextureQuality}); err != nil {
		return fmt.Errorf("encode webp: %w", err)
	}

	log.Info().Str("texture", tex.Name).Str("path", outPath).Msg("Texture saved")
	return nil
}

func loadSourceImage(ctx context.Context, client *http.Client, source string) (image.Image, error) {
	var reader io.Reader

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		log.Info().Str("url", source).Msg("Downloading source image...")

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("download failed: %d", resp.StatusCode)
		}

		// Buffer the body, some decoders need to peek.
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(bodyBytes)
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()

		reader = f
	}

	img, format, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	log.Debug().Str("format", format).Msg("Image decoded successfully")
	return img, nil
}
