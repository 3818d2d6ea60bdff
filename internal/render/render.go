// Package render draws bitboards as PNG board diagrams.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/hailam/chessmatch/internal/board"
)

// MinSize is the smallest diagram edge in pixels.
const MinSize = 72

// Board is drawn on an 8x8 grid of unit squares inside a half-unit margin
// that holds the coordinate labels.
const (
	margin = 0.5
	units  = 8 + 2*margin
)

var ErrSizeTooSmall = errors.New("render: diagram size too small")

// Colors
var (
	colorBackground = "#ffffff"
	colorLight      = "#f0d9b5"
	colorDark       = "#b58863"
	colorAttackLt   = "#f4a49c"
	colorAttackDk   = "#d9614f"
	colorOrigin     = "#5b9bd5"
	colorBlocker    = "#2b2b2b"
	colorLabel      = color.RGBA{0x40, 0x40, 0x40, 0xff}
	colorPieceMark  = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// Diagram describes what to draw: the origin square (NoSquare for none),
// the piece standing there (NoPiece for none), the attacked squares and the
// blockers.
type Diagram struct {
	Origin   board.Square
	Piece    board.Piece
	Attacks  board.Bitboard
	Blockers board.Bitboard
}

// AttackDiagram renders origin, its attack set and the blockers as a size x
// size image.
func AttackDiagram(origin board.Square, attacks, blockers board.Bitboard, size int) (image.Image, error) {
	return Diagram{Origin: origin, Piece: board.NoPiece, Attacks: attacks, Blockers: blockers}.Render(size)
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// SVG returns the diagram without labels as an SVG document in board units.
func (d Diagram) SVG() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %g %g" width="%g" height="%g">`, units, units, units, units)
	fmt.Fprintf(&sb, `<rect x="0" y="0" width="%g" height="%g" fill="%s"/>`, units, units, colorBackground)

	for sq := board.A1; sq <= board.H8; sq++ {
		x, y := squareOrigin(sq)
		light := (sq.File()+sq.Rank())%2 == 1

		fill := colorDark
		switch {
		case sq == d.Origin:
			fill = colorOrigin
		case d.Attacks.IsSet(sq) && light:
			fill = colorAttackLt
		case d.Attacks.IsSet(sq):
			fill = colorAttackDk
		case light:
			fill = colorLight
		}
		fmt.Fprintf(&sb, `<rect x="%g" y="%g" width="1" height="1" fill="%s"/>`, x, y, fill)

		if d.Blockers.IsSet(sq) && sq != d.Origin {
			fmt.Fprintf(&sb, `<circle cx="%g" cy="%g" r="0.28" fill="%s"/>`, x+0.5, y+0.5, colorBlocker)
		}
	}

	sb.WriteString(`</svg>`)
	return sb.String()
}

// Render rasterises the diagram and adds file and rank labels.
func (d Diagram) Render(size int) (*image.RGBA, error) {
	if size < MinSize {
		return nil, fmt.Errorf("%w: %d < %d", ErrSizeTooSmall, size, MinSize)
	}

	icon, err := oksvg.ReadIconStream(strings.NewReader(d.SVG()))
	if err != nil {
		return nil, fmt.Errorf("render: parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	scale := float64(size) / units
	if err := drawLabels(rgba, scale); err != nil {
		return nil, err
	}
	if d.Piece != board.NoPiece && d.Origin.IsValid() {
		if err := drawPieceMark(rgba, scale, d.Origin, d.Piece); err != nil {
			return nil, err
		}
	}
	return rgba, nil
}

// squareOrigin returns the top-left corner of sq in board units. Rank 8 is
// at the top.
func squareOrigin(sq board.Square) (float64, float64) {
	return margin + float64(sq.File()), margin + float64(7-sq.Rank())
}

var (
	fontOnce sync.Once
	fontData *opentype.Font
	fontErr  error
)

func face(px float64) (font.Face, error) {
	fontOnce.Do(func() {
		fontData, fontErr = opentype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("render: load font: %w", fontErr)
	}
	return opentype.NewFace(fontData, &opentype.FaceOptions{
		Size:    px,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func drawLabels(dst *image.RGBA, scale float64) error {
	f, err := face(scale * 0.36)
	if err != nil {
		return err
	}
	defer f.Close()

	dr := &font.Drawer{Dst: dst, Src: image.NewUniform(colorLabel), Face: f}
	for i := 0; i < 8; i++ {
		file := string(rune('a' + i))
		rank := string(rune('1' + i))

		// Files along the bottom margin, ranks along the left one.
		centerText(dr, file, (margin+float64(i)+0.5)*scale, (units-margin/2)*scale)
		centerText(dr, rank, margin/2*scale, (margin+float64(7-i)+0.5)*scale)
	}
	return nil
}

func drawPieceMark(dst *image.RGBA, scale float64, sq board.Square, p board.Piece) error {
	f, err := face(scale * 0.6)
	if err != nil {
		return err
	}
	defer f.Close()

	x, y := squareOrigin(sq)
	dr := &font.Drawer{Dst: dst, Src: image.NewUniform(colorPieceMark), Face: f}
	centerText(dr, p.String(), (x+0.5)*scale, (y+0.5)*scale)
	return nil
}

// centerText draws s centred on (cx, cy) in pixels.
func centerText(dr *font.Drawer, s string, cx, cy float64) {
	dr.Dot = fixed.Point26_6{}
	bounds, _ := dr.BoundString(s)
	w := bounds.Max.X - bounds.Min.X
	h := bounds.Max.Y - bounds.Min.Y

	dr.Dot = fixed.Point26_6{
		X: fixed.Int26_6(cx*64) - w/2 - bounds.Min.X,
		Y: fixed.Int26_6(cy*64) - h/2 - bounds.Min.Y,
	}
	dr.DrawString(s)
}
