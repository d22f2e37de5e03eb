package ircd

import "strings"

// isValidChannelName says whether a channel name is usable: '#', at
// least one more byte, within the limit, and nothing that would break
// a protocol line.
func isValidChannelName(maxLen int, name string) bool {
	if len(name) < 2 || len(name) > maxLen || name[0] != '#' {
		return false
	}
	return !strings.ContainsAny(name, " ,\x07")
}

// safeWord makes a string safe to echo as a non-trailing reply
// parameter: cut at the first space, "*" if nothing remains. Client
// input flows through numeric replies, and a trailing-form parameter
// must not smuggle a space into the middle of one.
func safeWord(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return "*"
	}
	return s
}
