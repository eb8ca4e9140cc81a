package printing

// PaperSize names a supported page format
type PaperSize string

const (
	PaperSizeA4          PaperSize = "A4"
	PaperSizeA5          PaperSize = "A5"
	PaperSizeLetter      PaperSize = "LETTER"
	PaperSizeReceipt80MM PaperSize = "RECEIPT_80MM"
)

// IsValid reports whether the paper size is supported
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperSizeA4, PaperSizeA5, PaperSizeLetter, PaperSizeReceipt80MM:
		return true
	}
	return false
}

// Dimensions returns width and height in millimetres
func (p PaperSize) Dimensions() (width, height int) {
	switch p {
	case PaperSizeA5:
		return 148, 210
	case PaperSizeLetter:
		return 216, 279
	case PaperSizeReceipt80MM:
		return 80, 0
	default:
		return 210, 297
	}
}

// IsRoll reports whether the paper is a continuous roll without a fixed
// page height
func (p PaperSize) IsRoll() bool {
	return p == PaperSizeReceipt80MM
}

// Orientation is the page orientation
type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// Margins are page margins in millimetres
type Margins struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// DefaultMargins suit sheet paper
func DefaultMargins() Margins {
	return Margins{Top: 15, Right: 12, Bottom: 15, Left: 12}
}

// RollMargins suit receipt rolls
func RollMargins() Margins {
	return Margins{Top: 2, Right: 2, Bottom: 2, Left: 2}
}
