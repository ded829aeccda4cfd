package parser

import "strings"

// RewriteSelfClosing converts self-closing component tags into explicit
// open/close pairs so the HTML parser treats them as normal elements:
//
//	<Filter where="price > 100" />  =>  <Filter where="price > 100"></Filter>
//
// The scan is quote-aware: a '>' or '/>' inside a quoted attribute value
// never terminates the tag, which is exactly where regex-based rewriters go
// wrong. Only tags recognized by isComponent are rewritten; standard HTML
// self-closing tags (void elements) are left for the parser to handle.
func RewriteSelfClosing(input string, isComponent func(string) bool) string {
	var b strings.Builder
	b.Grow(len(input))

	i := 0
	for i < len(input) {
		c := input[i]
		if c != '<' {
			b.WriteByte(c)
			i++
			continue
		}

		// Read the tag name immediately after '<'.
		j := i + 1
		for j < len(input) && isTagNameChar(input[j]) {
			j++
		}
		name := input[i+1 : j]
		if name == "" || !isComponent(name) {
			b.WriteByte(c)
			i++
			continue
		}

		// Scan the attribute region tracking quote state. Only a '>' seen
		// outside a quoted value terminates the tag.
		k := j
		inQuote := false
		var quoteChar byte
		end := -1
		selfClosing := false

		for k < len(input) {
			ch := input[k]
			if inQuote {
				if ch == quoteChar {
					inQuote = false
				}
				k++
				continue
			}
			switch {
			case ch == '"' || ch == '\'':
				inQuote = true
				quoteChar = ch
				k++
			case ch == '/' && k+1 < len(input) && input[k+1] == '>':
				selfClosing = true
				end = k
			case ch == '>':
				end = k
			default:
				k++
			}
			if end >= 0 {
				break
			}
		}

		if end < 0 {
			// Unterminated tag; copy the '<' through and let the HTML
			// parser recover.
			b.WriteByte(c)
			i++
			continue
		}

		if selfClosing {
			b.WriteString(strings.TrimRight(input[i:end], " \t"))
			b.WriteString("></")
			b.WriteString(name)
			b.WriteByte('>')
			i = end + 2
		} else {
			b.WriteString(input[i : end+1])
			i = end + 1
		}
	}

	return b.String()
}

func isTagNameChar(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '-'
}
