package service

// levenshtein is the classic insert/delete/substitute edit distance, computed
// over a (len(b)+1) x (len(a)+1) grid of runes.
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	al, bl := len(ra), len(rb)

	dp := make([][]int, bl+1)
	for j := 0; j <= bl; j++ {
		dp[j] = make([]int, al+1)
		dp[j][0] = j
	}
	for i := 0; i <= al; i++ {
		dp[0][i] = i
	}

	for j := 1; j <= bl; j++ {
		for i := 1; i <= al; i++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			dp[j][i] = min(dp[j][i-1]+1, dp[j-1][i]+1, dp[j-1][i-1]+cost)
		}
	}
	return dp[bl][al]
}

// Similarity is 1 - levenshtein/maxLen over case-folded inputs, in [0..1].
// Two empty strings are identical.
func Similarity(a, b string) float64 {
	a, b = fold(a), fold(b)
	m := len([]rune(a))
	if mb := len([]rune(b)); mb > m {
		m = mb
	}
	if m == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(m)
}
