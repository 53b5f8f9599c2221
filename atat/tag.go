package atat

import "iter"

// Tag is one occurrence of "@name@" or "@name:format@" in template text.
//
// Columns are 1-based byte offsets into the line; the span ColStart..ColEnd
// is inclusive of both '@' delimiters.
type Tag struct {
	Name     string `json:"variable"  yaml:"variable"`
	Format   string `json:"format"    yaml:"format"`
	Line     int    `json:"line_num"  yaml:"line_num"`
	ColStart int    `json:"col_start" yaml:"col_start"`
	ColEnd   int    `json:"col_end"   yaml:"col_end"`
	Raw      string `json:"-"         yaml:"-"`
}

// Scan returns the tags of one line of template text in the order they
// occur. lineNum is recorded in each Tag.
//
// At each '@' the formatted form "@name:format@" is tried first, then the
// plain form "@name@". A name is [A-Za-z_][A-Za-z0-9_]*; a format is one or
// more bytes other than '@' and newline. If neither form matches, scanning
// resumes at the next byte, so the '@' of a failed candidate may close
// nothing and open nothing. Tags do not nest, and a format cannot contain
// '@': the first '@' after the colon always closes the tag.
func Scan(line string, lineNum int) []Tag {
	var tags []Tag

	for t := range scanLine(line, lineNum) {
		tags = append(tags, t)
	}

	return tags
}

func scanLine(line string, lineNum int) iter.Seq[Tag] {
	return func(yield func(Tag) bool) {
		for i := 0; i < len(line); {
			if line[i] != '@' {
				i++

				continue
			}

			name, format, end, ok := matchAt(line, i)
			if !ok {
				i++

				continue
			}

			t := Tag{
				Name:     name,
				Format:   format,
				Line:     lineNum,
				ColStart: i + 1,
				ColEnd:   end,
				Raw:      line[i:end],
			}

			if !yield(t) {
				return
			}

			i = end
		}
	}
}

// matchAt matches a tag starting at s[i] == '@' and returns the offset one
// past its closing '@'.
func matchAt(s string, i int) (name, format string, end int, ok bool) {
	j := i + 1
	if j >= len(s) || !isIdentStart(s[j]) {
		return "", "", 0, false
	}

	k := j + 1
	for k < len(s) && isIdentChar(s[k]) {
		k++
	}

	if k >= len(s) {
		return "", "", 0, false
	}

	switch s[k] {
	case ':':
		f := k + 1
		m := f

		for m < len(s) && s[m] != '@' && s[m] != '\n' {
			m++
		}

		if m > f && m < len(s) && s[m] == '@' {
			return s[j:k], s[f:m], m + 1, true
		}

	case '@':
		return s[j:k], "", k + 1, true
	}

	return "", "", 0, false
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
