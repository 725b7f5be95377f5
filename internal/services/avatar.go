package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"
)

const (
	AvatarSize         = 200
	MaxPictureBytes    = 5 << 20
	MaxPicturePixels   = 4096 * 4096
	pictureJPEGQuality = 80
	blurRadius         = 5
	initialsHeight     = 80
)

// PictureOptions controls ProcessProfilePicture. A zero Size means
// AvatarSize.
type PictureOptions struct {
	Size     int
	BlurFace bool
}

// AvatarService renders profile pictures as data URLs.
type AvatarService interface {
	GenerateInitialsAvatar(username string) (string, error)
	ProcessProfilePicture(ctx context.Context, data []byte, opts PictureOptions) (string, error)
}

type avatarService struct {
	log logging.Logger
}

func NewAvatarService(log logging.Logger) AvatarService {
	if log == nil {
		log = logging.NewDiscard()
	}
	return &avatarService{log: log}
}

// Initials returns the uppercased first letters of the first two
// space-separated words of username.
func Initials(username string) string {
	var b strings.Builder
	n := 0
	for _, word := range strings.Split(username, " ") {
		if word == "" {
			continue
		}
		r := []rune(word)[0]
		b.WriteString(strings.ToUpper(string(r)))
		n++
		if n == 2 {
			break
		}
	}
	return b.String()
}

// AvatarHue is the background hue of the initials avatar: the sum of the
// code points of username modulo 360.
func AvatarHue(username string) int {
	sum := 0
	for _, r := range username {
		sum += int(r)
	}
	return sum % 360
}

// GenerateInitialsAvatar returns a 200x200 PNG data URL with the initials
// of username in white on a background colored by AvatarHue.
func (s *avatarService) GenerateInitialsAvatar(username string) (string, error) {
	img := image.NewRGBA(image.Rect(0, 0, AvatarSize, AvatarSize))
	bg := hslToRGB(float64(AvatarHue(username)), 0.70, 0.60)
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	if initials := Initials(username); initials != "" {
		drawCenteredText(img, initials, initialsHeight)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("png encoding: %w", err)
	}
	return dataURL("image/png", buf.Bytes()), nil
}

// drawCenteredText renders text with the 7x13 bitmap face and scales it up
// to roughly height pixels, centered on dst.
func drawCenteredText(dst *image.RGBA, text string, height int) {
	face := basicfont.Face7x13
	metrics := face.Metrics()
	w := font.MeasureString(face, text).Ceil()
	h := (metrics.Ascent + metrics.Descent).Ceil()

	glyphs := image.NewRGBA(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  glyphs,
		Src:  image.White,
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: metrics.Ascent},
	}
	d.DrawString(text)

	scale := float64(height) / float64(h)
	sw, sh := int(float64(w)*scale), int(float64(h)*scale)
	b := dst.Bounds()
	x0 := b.Min.X + (b.Dx()-sw)/2
	y0 := b.Min.Y + (b.Dy()-sh)/2

	draw.NearestNeighbor.Scale(dst, image.Rect(x0, y0, x0+sw, y0+sh), glyphs, glyphs.Bounds(), draw.Over, nil)
}

// ProcessProfilePicture decodes an uploaded image, crops it to a centered
// square, scales it to opts.Size, clips it to a circle, optionally blurs it
// and returns it as a JPEG data URL. Uploads over MaxPictureBytes and
// undecodable data fail with a validation error, as do images declaring
// more than MaxPicturePixels, which are rejected before decoding.
func (s *avatarService) ProcessProfilePicture(ctx context.Context, data []byte, opts PictureOptions) (string, error) {
	if len(data) > MaxPictureBytes {
		return "", common.NewValidationError(common.MsgPictureTooLarge)
	}
	size := opts.Size
	if size <= 0 {
		size = AvatarSize
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		s.log.Warn(ctx, "profile picture rejected", "error", err)
		return "", common.NewValidationError(common.MsgPictureInvalid)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > MaxPicturePixels {
		s.log.Warn(ctx, "profile picture rejected", "width", cfg.Width, "height", cfg.Height)
		return "", common.NewValidationError(common.MsgPictureInvalid)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		s.log.Warn(ctx, "profile picture rejected", "error", err)
		return "", common.NewValidationError(common.MsgPictureInvalid)
	}
	s.log.Debug(ctx, "processing profile picture", "format", format, "bounds", src.Bounds().String())

	sr := centerSquare(src.Bounds())
	scaled := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, sr, draw.Src, nil)

	if opts.BlurFace {
		scaled = boxBlur(scaled, blurRadius)
	}

	out := image.NewRGBA(scaled.Bounds())
	draw.DrawMask(out, out.Bounds(), scaled, image.Point{}, &circle{r: size / 2, c: image.Pt(size/2, size/2)}, image.Point{}, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: pictureJPEGQuality}); err != nil {
		return "", fmt.Errorf("jpeg encoding: %w", err)
	}
	return dataURL("image/jpeg", buf.Bytes()), nil
}

func centerSquare(r image.Rectangle) image.Rectangle {
	side := min(r.Dx(), r.Dy())
	x := r.Min.X + (r.Dx()-side)/2
	y := r.Min.Y + (r.Dy()-side)/2
	return image.Rect(x, y, x+side, y+side)
}

// circle is an alpha mask, opaque inside the circle of radius r around c.
type circle struct {
	c image.Point
	r int
}

func (m *circle) ColorModel() color.Model { return color.AlphaModel }

func (m *circle) Bounds() image.Rectangle {
	return image.Rect(m.c.X-m.r, m.c.Y-m.r, m.c.X+m.r, m.c.Y+m.r)
}

func (m *circle) At(x, y int) color.Color {
	xx := float64(x-m.c.X) + 0.5
	yy := float64(y-m.c.Y) + 0.5
	rr := float64(m.r)
	if xx*xx+yy*yy < rr*rr {
		return color.Alpha{A: 255}
	}
	return color.Alpha{}
}

// boxBlur runs three horizontal and vertical box passes of the given radius,
// which approximates a gaussian blur.
func boxBlur(src *image.RGBA, radius int) *image.RGBA {
	cur := src
	for i := 0; i < 3; i++ {
		cur = boxPass(cur, radius, true)
		cur = boxPass(cur, radius, false)
	}
	return cur
}

func boxPass(src *image.RGBA, radius int, horizontal bool) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var r, g, bl, a, n int
			for k := -radius; k <= radius; k++ {
				px, py := x, y
				if horizontal {
					px += k
				} else {
					py += k
				}
				if !(image.Point{X: px, Y: py}.In(b)) {
					continue
				}
				c := src.RGBAAt(px, py)
				r += int(c.R)
				g += int(c.G)
				bl += int(c.B)
				a += int(c.A)
				n++
			}
			dst.SetRGBA(x, y, color.RGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(bl / n), A: uint8(a / n)})
		}
	}
	return dst
}

// hslToRGB converts h in degrees and s, l in [0,1].
func hslToRGB(h, s, l float64) color.RGBA {
	c := (1 - math.Abs(2*l-1)) * s
	hp := h / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))

	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	m := l - c/2
	to8 := func(v float64) uint8 { return uint8(math.Round((v + m) * 255)) }
	return color.RGBA{R: to8(r), G: to8(g), B: to8(b), A: 255}
}

func dataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL returns the MIME type and payload of a base64 data URL.
func DecodeDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data URL without payload")
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("data URL is not base64")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, err
	}
	return mime, data, nil
}
