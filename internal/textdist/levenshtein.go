// Package textdist provides string distance metrics used for domain similarity.
package textdist

// Levenshtein returns the minimum number of single-character insertions,
// deletions and substitutions needed to turn a into b. Characters are Unicode
// code points, so "ä" and "a" are one substitution apart.
//
// Only one row of the dynamic-programming table is kept. The longer string
// drives the rows so the buffer is sized by the shorter one.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}

	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			above := row[j]
			row[j] = min(above+1, row[j-1]+1, diag+cost)
			diag = above
		}
	}

	return row[len(rb)]
}
