package ocr

// Pair is an aligned segment of two spellings. Equal segments are single
// characters; unequal ones may differ in length.
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// maxLookahead bounds how far apart matching characters may be found.
const maxLookahead = 4

// WordPair aligns a and b. Matching characters pair one to one; at a
// mismatch the shortest prefixes that lead to the nearest common character
// are paired as one segment. Any leftover tail forms the last pair.
func WordPair(a, b string) []Pair {
	w := [2][]rune{[]rune(a), []rune(b)}
	var out []Pair

	for len(w[0]) > 0 && len(w[1]) > 0 {
		if w[0][0] == w[1][0] {
			out = append(out, Pair{A: string(w[0][:1]), B: string(w[1][:1])})
			w[0], w[1] = w[0][1:], w[1][1:]
			continue
		}

		xs := [2]int{len(w[0]), len(w[1])}
		for n := 1; n <= maxLookahead; n++ {
			for _, side := range [2][2]int{{0, 1}, {1, 0}} {
				xs = nearestMatch(w[side[0]], w[side[1]], n, side, xs)
			}
		}

		out = append(out, Pair{A: string(w[0][:xs[0]]), B: string(w[1][:xs[1]])})
		w[0], w[1] = w[0][xs[0]:], w[1][xs[1]:]
	}

	if len(w[0]) > 0 || len(w[1]) > 0 {
		out = append(out, Pair{A: string(w[0]), B: string(w[1])})
	}
	return out
}

// nearestMatch finds the first j in p and k in q with p[j] == q[k] and
// j <= k < j+n. It replaces the cut points in xs when that pair of cuts is
// cheaper than the current one.
func nearestMatch(p, q []rune, n int, side [2]int, xs [2]int) [2]int {
	i1, i2 := side[0], side[1]
	for j := range p {
		for k := j; k < j+n && k < len(q); k++ {
			if p[j] != q[k] {
				continue
			}
			if cutCost(j, k) < cutCost(xs[i1], xs[i2]) {
				xs[i1], xs[i2] = j, k
			}
			return xs
		}
	}
	return xs
}

func cutCost(j, k int) int {
	d := j - k
	if d < 0 {
		d = -d
	}
	return d + j + k
}

// WordSimilarity is the number of equal pairs over the mean segment length
// summed across pairs. It is 1 for identical texts and 0 when nothing lines up.
func WordSimilarity(pairs []Pair) float64 {
	var equal, total float64
	for _, p := range pairs {
		if p.A == p.B {
			equal++
		}
		total += float64(len([]rune(p.A))+len([]rune(p.B))) / 2
	}
	if total == 0 {
		return 0
	}
	return equal / total
}
