// Package avatar downloads Discord user avatars and turns them into the
// round images used for avatar emoji.
package avatar

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"strconv"

	// Registered for image.Decode; the CDN serves any of these.
	_ "image/gif"
	_ "image/jpeg"

	"github.com/bwmarrin/discordgo"
	"github.com/cenkalti/dominantcolor"
)

// Size is the edge length, in pixels, of rendered avatar emoji
const Size = 128

const (
	// Discord avatars are well under both limits
	maxDownloadBytes = 8 << 20
	maxDimension     = 4096
)

// URL returns a static (non-animated) avatar URL for u at the given size
func URL(u *discordgo.User, size int) string {
	if u.Avatar == "" {
		return u.AvatarURL(strconv.Itoa(size))
	}
	return discordgo.EndpointUserAvatar(u.ID, u.Avatar) + "?size=" + strconv.Itoa(size)
}

// Download fetches and decodes the image at url
func Download(ctx context.Context, client *http.Client, url string) (image.Image, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build avatar request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download avatar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download avatar: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read avatar: %w", err)
	}
	if len(data) > maxDownloadBytes {
		return nil, fmt.Errorf("avatar is larger than %d bytes", maxDownloadBytes)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode avatar: %w", err)
	}
	if cfg.Width > maxDimension || cfg.Height > maxDimension {
		return nil, fmt.Errorf("avatar is %dx%d, larger than %dx%d", cfg.Width, cfg.Height, maxDimension, maxDimension)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode avatar: %w", err)
	}
	return img, nil
}

// Circle scales img to size×size and masks it to a circle. Pixels outside the
// circle become fully transparent; inside, the source alpha is kept.
func Circle(img image.Image, size int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, size, size))
	b := img.Bounds()
	if b.Empty() || size <= 0 {
		return out
	}

	r := float64(size) / 2
	for y := 0; y < size; y++ {
		sy := b.Min.Y + y*b.Dy()/size
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - r
			dy := float64(y) + 0.5 - r
			if dx*dx+dy*dy > r*r {
				continue
			}

			sx := b.Min.X + x*b.Dx()/size
			out.SetNRGBA(x, y, color.NRGBAModel.Convert(img.At(sx, sy)).(color.NRGBA))
		}
	}
	return out
}

// EncodePNG encodes img as PNG
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Render downloads u's avatar and returns it as a round PNG ready for upload
func Render(ctx context.Context, client *http.Client, u *discordgo.User) ([]byte, error) {
	img, err := Download(ctx, client, URL(u, Size))
	if err != nil {
		return nil, err
	}
	return EncodePNG(Circle(img, Size))
}

// DominantColour returns the most prominent colour of img as an embed colour
func DominantColour(img image.Image) int {
	c := dominantcolor.Find(img)
	return int(c.R)<<16 | int(c.G)<<8 | int(c.B)
}
