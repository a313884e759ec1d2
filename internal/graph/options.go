package graph

// Tuning defaults. These mirror the values the enrichment pipeline was
// calibrated against; commands expose each one as a flag.
const (
	DefaultEdgeThreshold    = 0.2
	DefaultGroupThreshold   = 0.25
	DefaultDomainBonus      = 0.25
	DefaultDomainGroupMin   = 2
	DefaultKNNK             = 6
	DefaultDedupeHamming    = 3
	DefaultKeywordCount     = 8
	DefaultLabelTermCount   = 3
	domainLabelMajorityFrac = 0.55
)

// Options controls one graph build. The zero value is not useful; start
// from DefaultOptions.
type Options struct {
	// Source labels the input in the output graph (typically the input
	// file's base name).
	Source string

	// EdgeThreshold is the minimum similarity for an edge to be emitted.
	// It is independent of GroupThreshold.
	EdgeThreshold float64

	// GroupThreshold is the minimum similarity considered for grouping.
	GroupThreshold float64

	// DomainBonus is added to the similarity of two same-domain tabs,
	// without clamping.
	DomainBonus float64

	// DomainGroup unions all tabs of any domain with at least
	// DomainGroupMin members, independent of similarity.
	DomainGroup    bool
	DomainGroupMin int

	// MutualKNN gates similarity merges on mutual top-K neighborhood
	// membership. When false, any pair at or above GroupThreshold merges.
	MutualKNN bool
	KNNK      int

	// DedupeHamming is the maximum fingerprint Hamming distance for two
	// same-domain tabs to be considered near-duplicates.
	DedupeHamming int

	// KeywordCount caps derived keywords per tab when the input carries
	// none.
	KeywordCount int

	// Workers bounds the similarity-matrix worker pool. Zero or negative
	// means one worker per CPU. Results are identical regardless.
	Workers int
}

// DefaultOptions returns the documented defaults with both grouping
// strategies enabled.
func DefaultOptions() Options {
	return Options{
		EdgeThreshold:  DefaultEdgeThreshold,
		GroupThreshold: DefaultGroupThreshold,
		DomainBonus:    DefaultDomainBonus,
		DomainGroup:    true,
		DomainGroupMin: DefaultDomainGroupMin,
		MutualKNN:      true,
		KNNK:           DefaultKNNK,
		DedupeHamming:  DefaultDedupeHamming,
		KeywordCount:   DefaultKeywordCount,
	}
}
