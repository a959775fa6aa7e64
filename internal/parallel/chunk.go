package parallel

// Range is a half-open index interval [Lo, Hi).
type Range struct {
	Lo, Hi int
}

// ChunkRanges splits n items into at most chunks contiguous ranges of
// near-equal size. The ranges cover [0, n) exactly, in order, with no
// overlap, so writers of disjoint sub-slices never contend. Fewer than
// chunks ranges are returned when n < chunks; n <= 0 returns nil.
func ChunkRanges(n, chunks int) []Range {
	if n <= 0 {
		return nil
	}
	if chunks <= 0 {
		chunks = 1
	}
	if chunks > n {
		chunks = n
	}

	ranges := make([]Range, 0, chunks)
	per := n / chunks
	rem := n % chunks
	lo := 0
	for i := 0; i < chunks; i++ {
		hi := lo + per
		if i < rem {
			hi++
		}
		ranges = append(ranges, Range{Lo: lo, Hi: hi})
		lo = hi
	}
	return ranges
}
