package music

// QualityFlags is a 32-bit mask describing everything suspicious about
// a track's metadata. Persisted as an integer column, so the bit
// positions are part of the storage contract and must not move.
type QualityFlags uint32

// Missing-metadata bits.
const (
	FlagTitleIsFilename QualityFlags = 1 << 0
	FlagMissingArtist   QualityFlags = 1 << 1
	FlagMissingAlbum    QualityFlags = 1 << 2
	FlagMissingYear     QualityFlags = 1 << 3
	FlagMissingTrackNum QualityFlags = 1 << 4
)

// Suspicious-metadata bits.
const (
	FlagGenericMetadata      QualityFlags = 1 << 5
	FlagNoMusicBrainzID      QualityFlags = 1 << 6
	FlagLowConfidence        QualityFlags = 1 << 7
	FlagBetterMatchAvailable QualityFlags = 1 << 8
	FlagNeverChecked         QualityFlags = 1 << 9
	FlagFileChanged          QualityFlags = 1 << 10
)

// Verification-status bits.
const (
	FlagVerified            QualityFlags = 1 << 11
	FlagPossiblyMislabeled  QualityFlags = 1 << 12
	FlagUnidentified        QualityFlags = 1 << 13
	FlagTitleMismatch       QualityFlags = 1 << 14
	FlagArtistMismatch      QualityFlags = 1 << 15
	FlagAlbumMismatch       QualityFlags = 1 << 16
	FlagRecordingIDMismatch QualityFlags = 1 << 17
	FlagMultiAlbum          QualityFlags = 1 << 18
)

// Composite aliases for UI queries.
const (
	FlagAnyMismatch = FlagTitleMismatch | FlagArtistMismatch | FlagAlbumMismatch | FlagRecordingIDMismatch
	FlagNeedsReview = FlagPossiblyMislabeled | FlagAnyMismatch | FlagMultiAlbum
)

// Has reports whether all bits in mask are set.
func (f QualityFlags) Has(mask QualityFlags) bool { return f&mask == mask }

// HasAny reports whether any bit in mask is set.
func (f QualityFlags) HasAny(mask QualityFlags) bool { return f&mask != 0 }

// QualityTier buckets a 0-100 score for display.
type QualityTier string

const (
	TierExcellent QualityTier = "excellent"
	TierGood      QualityTier = "good"
	TierFair      QualityTier = "fair"
	TierPoor      QualityTier = "poor"
)

// TierForScore maps a quality score to its tier.
func TierForScore(score int) QualityTier {
	switch {
	case score >= 90:
		return TierExcellent
	case score >= 70:
		return TierGood
	case score >= 50:
		return TierFair
	default:
		return TierPoor
	}
}
