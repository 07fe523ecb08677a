package music

// CoverArt is a fetched front cover with its declared content type.
type CoverArt struct {
	Data     []byte
	MimeType string
}

// CoverSize selects which cover thumbnail to fetch. The numeric sizes
// are the pixel widths the archive serves.
type CoverSize string

const (
	CoverSizeSmall    CoverSize = "250"
	CoverSizeMedium   CoverSize = "500"
	CoverSizeLarge    CoverSize = "1200"
	CoverSizeOriginal CoverSize = "original"
)
