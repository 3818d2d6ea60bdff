package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/hailam/chessmatch/internal/board"
)

const testSize = 360 // 40px per unit

// centerOf returns the pixel at the middle of sq.
func centerOf(img image.Image, sq board.Square) color.RGBA {
	scale := float64(testSize) / units
	x, y := squareOrigin(sq)
	px := int((x + 0.5) * scale)
	py := int((y + 0.5) * scale)
	r, g, b, a := img.At(px, py).RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

func hex(t *testing.T, s string) color.RGBA {
	t.Helper()
	var c color.RGBA
	c.A = 0xff
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		t.Fatalf("bad color %q: %v", s, err)
	}
	return c
}

func near(a, b color.RGBA) bool {
	d := func(x, y uint8) int {
		if x > y {
			return int(x - y)
		}
		return int(y - x)
	}
	return d(a.R, b.R) <= 4 && d(a.G, b.G) <= 4 && d(a.B, b.B) <= 4
}

func TestAttackDiagram(t *testing.T) {
	blockers := board.SquareBB(board.D6) | board.SquareBB(board.F4)
	attacks := board.SlidingAttacks(board.D4, board.Rook, blockers)

	img, err := AttackDiagram(board.D4, attacks, blockers, testSize)
	if err != nil {
		t.Fatalf("AttackDiagram: %v", err)
	}
	if b := img.Bounds(); b.Dx() != testSize || b.Dy() != testSize {
		t.Fatalf("bounds = %v, want %dx%d", b, testSize, testSize)
	}

	tests := []struct {
		name string
		sq   board.Square
		want string
	}{
		{"origin", board.D4, colorOrigin},
		{"attacked light square", board.D5, colorAttackLt},
		{"attacked dark square", board.D2, colorAttackDk},
		{"blocker", board.D6, colorBlocker},
		{"blocker", board.F4, colorBlocker},
		{"quiet dark square", board.A1, colorDark},
		{"quiet light square", board.H1, colorLight},
		{"behind blocker", board.D7, colorLight},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got, want := centerOf(img, tc.sq), hex(t, tc.want); !near(got, want) {
				t.Errorf("%s center = %v, want %v", tc.sq, got, want)
			}
		})
	}
}

func TestDiagramWithPiece(t *testing.T) {
	d := Diagram{
		Origin:  board.G1,
		Piece:   board.WhiteKnight,
		Attacks: board.KnightAttacks(board.G1),
	}
	img, err := d.Render(testSize)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	// The label is drawn in white over the origin square somewhere.
	scale := float64(testSize) / units
	x0, y0 := squareOrigin(board.G1)
	found := false
	for y := int(y0 * scale); y < int((y0+1)*scale) && !found; y++ {
		for x := int(x0 * scale); x < int((x0+1)*scale); x++ {
			if img.RGBAAt(x, y) == colorPieceMark {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("no piece mark drawn on g1")
	}
}

func TestSVG(t *testing.T) {
	svg := Diagram{Origin: board.NoSquare, Piece: board.NoPiece, Blockers: board.SquareBB(board.E4)}.SVG()
	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("not an svg document: %.40q", svg)
	}
	if got := strings.Count(svg, "<circle"); got != 1 {
		t.Errorf("%d blocker circles, want 1", got)
	}
	if strings.Contains(svg, colorOrigin) {
		t.Error("origin drawn although none was given")
	}
}

func TestRenderTooSmall(t *testing.T) {
	if _, err := AttackDiagram(board.A1, board.Empty, board.Empty, MinSize-1); !errors.Is(err, ErrSizeTooSmall) {
		t.Errorf("err = %v, want ErrSizeTooSmall", err)
	}
}

func TestWritePNG(t *testing.T) {
	img, err := AttackDiagram(board.E4, board.KingAttacks(board.E4), board.Empty, MinSize)
	if err != nil {
		t.Fatalf("AttackDiagram: %v", err)
	}

	var buf bytes.Buffer
	if err := WritePNG(&buf, img); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("decoded bounds %v, want %v", decoded.Bounds(), img.Bounds())
	}
}
