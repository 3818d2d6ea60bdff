package board

import "fmt"

// Color represents the color of a piece or player.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// Letter returns the one-letter code used in piece codes and FEN.
func (c Color) Letter() byte {
	if c == Black {
		return 'b'
	}
	return 'w'
}

// ParseColor accepts "white"/"black" in any case as well as "w"/"b".
func ParseColor(s string) (Color, error) {
	switch s {
	case "w", "white", "White", "WHITE":
		return White, nil
	case "b", "black", "Black", "BLACK":
		return Black, nil
	}
	return NoColor, fmt.Errorf("%w: %q", ErrUnknownColor, s)
}

// MarshalText encodes the color as "white" or "black".
func (c Color) MarshalText() ([]byte, error) {
	switch c {
	case White:
		return []byte("white"), nil
	case Black:
		return []byte("black"), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownColor, c)
}

// UnmarshalText decodes a color written by MarshalText.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// PieceType represents the type of a chess piece.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = 6
)

// String returns the piece type name.
func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// IsSlider reports whether the piece type moves along rays.
func (pt PieceType) IsSlider() bool {
	return pt == Bishop || pt == Rook || pt == Queen
}

// Piece combines PieceType and Color into a single value.
// Encoded as: pieceType + color*6
type Piece uint8

const (
	WhitePawn   Piece = Piece(Pawn) + Piece(White)*6
	WhiteKnight Piece = Piece(Knight) + Piece(White)*6
	WhiteBishop Piece = Piece(Bishop) + Piece(White)*6
	WhiteRook   Piece = Piece(Rook) + Piece(White)*6
	WhiteQueen  Piece = Piece(Queen) + Piece(White)*6
	WhiteKing   Piece = Piece(King) + Piece(White)*6
	BlackPawn   Piece = Piece(Pawn) + Piece(Black)*6
	BlackKnight Piece = Piece(Knight) + Piece(Black)*6
	BlackBishop Piece = Piece(Bishop) + Piece(Black)*6
	BlackRook   Piece = Piece(Rook) + Piece(Black)*6
	BlackQueen  Piece = Piece(Queen) + Piece(Black)*6
	BlackKing   Piece = Piece(King) + Piece(Black)*6
	NoPiece     Piece = 12
)

// NewPiece creates a Piece from PieceType and Color.
func NewPiece(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	return Piece(pt) + Piece(c)*6
}

// Type returns the PieceType of the piece.
func (p Piece) Type() PieceType {
	if p >= NoPiece {
		return NoPieceType
	}
	return PieceType(p % 6)
}

// Color returns the Color of the piece.
func (p Piece) Color() Color {
	if p >= NoPiece {
		return NoColor
	}
	return Color(p / 6)
}

// String returns the FEN character for the piece.
// Uppercase for white, lowercase for black.
func (p Piece) String() string {
	if p >= NoPiece {
		return " "
	}
	chars := "PNBRQKpnbrqk"
	return string(chars[p])
}

// Code returns the two-character piece code: color letter then kind letter,
// e.g. "wP" or "bN". NoPiece has an empty code.
func (p Piece) Code() string {
	if p >= NoPiece {
		return ""
	}
	return string([]byte{p.Color().Letter(), "PNBRQK"[p.Type()]})
}

// pieceCodes is the full decode table for two-character piece codes.
var pieceCodes = map[string]Piece{
	"wP": WhitePawn,
	"wN": WhiteKnight,
	"wB": WhiteBishop,
	"wR": WhiteRook,
	"wQ": WhiteQueen,
	"wK": WhiteKing,
	"bP": BlackPawn,
	"bN": BlackKnight,
	"bB": BlackBishop,
	"bR": BlackRook,
	"bQ": BlackQueen,
	"bK": BlackKing,
}

// ParsePieceCode decodes a two-character piece code. Anything outside the
// twelve known codes is an error; there is no fallback piece.
func ParsePieceCode(code string) (Piece, error) {
	if p, ok := pieceCodes[code]; ok {
		return p, nil
	}
	return NoPiece, fmt.Errorf("%w: %q", ErrUnknownPieceCode, code)
}

// MarshalText encodes the piece as its two-character code.
func (p Piece) MarshalText() ([]byte, error) {
	if p > NoPiece {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPieceCode, p)
	}
	return []byte(p.Code()), nil
}

// UnmarshalText decodes a piece code. The empty string decodes to NoPiece.
func (p *Piece) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*p = NoPiece
		return nil
	}
	parsed, err := ParsePieceCode(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// PieceFromChar converts a FEN character to a Piece.
func PieceFromChar(c byte) Piece {
	switch c {
	case 'P':
		return WhitePawn
	case 'N':
		return WhiteKnight
	case 'B':
		return WhiteBishop
	case 'R':
		return WhiteRook
	case 'Q':
		return WhiteQueen
	case 'K':
		return WhiteKing
	case 'p':
		return BlackPawn
	case 'n':
		return BlackKnight
	case 'b':
		return BlackBishop
	case 'r':
		return BlackRook
	case 'q':
		return BlackQueen
	case 'k':
		return BlackKing
	default:
		return NoPiece
	}
}
