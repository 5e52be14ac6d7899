package actionz

import "strings"

// BuildTarget assembles the lookup URL. The value is sent as key=value only
// when key is set; params is a literal query fragment appended after it.
// The joined query is percent-encoded the way a browser's encodeURI does
// (reserved characters such as & and = survive) and appended after "?" only
// when it is not empty.
func BuildTarget(baseURL, key, params, value string) string {
	var parts []string
	if key != "" {
		parts = append(parts, key+"="+value)
	}
	if params != "" {
		parts = append(parts, params)
	}

	query := encodeURI(strings.Join(parts, "&"))
	if query == "" {
		return baseURL
	}
	return baseURL + "?" + query
}

const upperhex = "0123456789ABCDEF"

// uriSafe marks the bytes encodeURI leaves alone.
var uriSafe = func() (t [256]bool) {
	for c := 'a'; c <= 'z'; c++ {
		t[c] = true
	}
	for c := 'A'; c <= 'Z'; c++ {
		t[c] = true
	}
	for c := '0'; c <= '9'; c++ {
		t[c] = true
	}
	for _, c := range ";,/?:@&=+$-_.!~*'()#" {
		t[c] = true
	}
	return t
}()

func encodeURI(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if uriSafe[c] {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}
