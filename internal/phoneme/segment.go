package phoneme

// Segment splits a run of Han characters by forward maximum matching over
// the dictionary's phrases. Characters that start no phrase become single
// character segments.
func Segment(text string, dict *Dictionary) []string {
	rs := []rune(text)
	var out []string
	for i := 0; i < len(rs); {
		n := matchPhrase(rs[i:], dict)
		out = append(out, string(rs[i:i+n]))
		i += n
	}
	return out
}

// matchPhrase returns the rune length of the longest phrase at the start
// of rs, or 1.
func matchPhrase(rs []rune, dict *Dictionary) int {
	best := 1
	for n := 2; n <= len(rs) && n <= dict.maxRunesOrZero(); n++ {
		prefix := string(rs[:n])
		if !dict.HasPrefix(prefix) {
			break
		}
		if dict.Has(prefix) {
			best = n
		}
	}
	return best
}

func (d *Dictionary) maxRunesOrZero() int {
	if d == nil {
		return 0
	}
	return d.maxRunes
}
