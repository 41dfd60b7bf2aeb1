package entity

// Ratio computes the Ratcliff-Obershelp similarity of two strings as a
// value in [0, 1]: twice the total size of the matching blocks divided by
// the combined length. This is the same measure difflib-style sequence
// matchers report, computed over runes.
func Ratio(a, b string) float64 {
	ar, br := []rune(a), []rune(b)
	total := len(ar) + len(br)
	if total == 0 {
		return 1.0
	}
	matches := matchingTotal(ar, br, 0, len(ar), 0, len(br))
	return 2.0 * float64(matches) / float64(total)
}

// matchingTotal sums the sizes of all matching blocks by recursively
// splitting around the longest match, mirroring the classic algorithm.
func matchingTotal(a, b []rune, alo, ahi, blo, bhi int) int {
	i, j, size := longestMatch(a, b, alo, ahi, blo, bhi)
	if size == 0 {
		return 0
	}
	return size +
		matchingTotal(a, b, alo, i, blo, j) +
		matchingTotal(a, b, i+size, ahi, j+size, bhi)
}

// longestMatch finds the longest matching block in a[alo:ahi] and
// b[blo:bhi]. Of all maximal blocks it returns the one starting earliest
// in a, then earliest in b.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	b2j := make(map[rune][]int, bhi-blo)
	for j := blo; j < bhi; j++ {
		b2j[b[j]] = append(b2j[b[j]], j)
	}

	besti, bestj = alo, blo
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newJ2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newJ2len
	}
	return besti, bestj, bestsize
}
