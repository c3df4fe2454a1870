package bus

// Topics are dot-delimited hierarchies, e.g. "events.position.opened.BTCUSDT".
// Subscription patterns may contain '*' (matches any run of characters,
// including dots) and '?' (matches exactly one character).

// MatchTopic reports whether topic matches the wildcard pattern. Two-pointer
// scan with backtracking to the last '*', no allocation.
func MatchTopic(topic, pattern string) bool {
	ti, pi := 0, 0
	star, mark := -1, 0

	for ti < len(topic) {
		switch {
		case pi < len(pattern) && (pattern[pi] == '?' || pattern[pi] == topic[ti]):
			ti++
			pi++
		case pi < len(pattern) && pattern[pi] == '*':
			star = pi
			mark = ti
			pi++
		case star >= 0:
			pi = star + 1
			mark++
			ti = mark
		default:
			return false
		}
	}

	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}
