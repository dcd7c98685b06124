// Package qr renders the identity QR codes handed to customers.  Rendering
// is delegated to the go-qrcode library; this package only layers the
// business's styling preferences on top and guarantees a fallback: when a
// styled render cannot be produced, the plain black-on-white render is
// returned instead of an error.
package qr

import (
	"image/color"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the rendered image edge in pixels.
const DefaultSize = 512

// Style mirrors a business's QR styling preferences.  Only the foreground
// color affects the rendered image; logo overlays and corner/dot shapes are
// accepted for forward compatibility and ignored by the renderer.
type Style struct {
	LogoURL         string
	ForegroundColor string // hex, e.g. "#1a1a2e" or "1a1a2e"
	CornerShape     string
	DotShape        string
}

// RenderPNG encodes payload as a QR PNG of the given size, applying the
// style where supported.  The output is deterministic for identical payload
// and style.  A bad style degrades to the plain render; only an unencodable
// payload yields an error.
func RenderPNG(payload string, style Style, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	if fg, ok := parseHexColor(style.ForegroundColor); ok {
		q.ForegroundColor = fg
	}
	png, err := q.PNG(size)
	if err != nil {
		// Styled render failed; fall back to the library default.
		return qrcode.Encode(payload, qrcode.Medium, size)
	}
	return png, nil
}

// parseHexColor parses "#rrggbb" (hash optional) into an opaque color.
// Anything it cannot parse reports false so the caller keeps the default.
func parseHexColor(s string) (color.Color, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return nil, false
	}
	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		hi, ok1 := hexVal(s[2*i])
		lo, ok2 := hexVal(s[2*i+1])
		if !ok1 || !ok2 {
			return nil, false
		}
		rgb[i] = hi<<4 | lo
	}
	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff}, true
}

func hexVal(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}
