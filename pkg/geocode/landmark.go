package geocode

import "regexp"

// stationRe matches the longest contiguous Hangul run ending in 역 ("station").
// 역 itself is Hangul, so the greedy quantifier backtracks just enough to
// leave the final 역 as the suffix.
var stationRe = regexp.MustCompile(`[가-힣]+역`)

// StationName extracts a subway-station token from free text, e.g.
// "시청역 4번출구 앞" yields "시청역". The second return is false when the
// text contains no station reference.
func StationName(text string) (string, bool) {
	m := stationRe.FindString(text)
	if m == "" {
		return "", false
	}
	return m, true
}
