package boundary

// Select picks the trim point from the two mode searches. BlackWhite wins
// when it is found and not later than Static. A start before the first
// second is not a usable trim point.
func Select(bw, st Result) (Result, bool) {
	var pick Result
	switch {
	case bw.Found && (!st.Found || bw.Start <= st.Start):
		pick = bw
	case st.Found:
		pick = st
	default:
		return Result{}, false
	}
	if pick.Start < 1 {
		return Result{}, false
	}
	return pick, true
}
