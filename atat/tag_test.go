package atat

import (
	"slices"
	"testing"
)

func TestScan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want []Tag
	}{
		{
			name: "plain and formatted",
			line: "@X@ and @Y:%s-%s@\n",
			want: []Tag{
				{Name: "X", Line: 3, ColStart: 1, ColEnd: 3, Raw: "@X@"},
				{Name: "Y", Format: "%s-%s", Line: 3, ColStart: 9, ColEnd: 17, Raw: "@Y:%s-%s@"},
			},
		},
		{name: "email address", line: "user@example.com", want: nil},
		{name: "leading digit", line: "@9X@", want: nil},
		{name: "unterminated format", line: "@A:fmt\n", want: nil},
		{
			name: "doubled delimiters",
			line: "@@X@@",
			want: []Tag{{Name: "X", Line: 3, ColStart: 2, ColEnd: 4, Raw: "@X@"}},
		},
		{
			name: "empty format",
			line: "@A:@B@",
			want: []Tag{{Name: "B", Line: 3, ColStart: 4, ColEnd: 6, Raw: "@B@"}},
		},
		{
			name: "at ends format",
			line: "@A:x@y@",
			want: []Tag{{Name: "A", Format: "x", Line: 3, ColStart: 1, ColEnd: 5, Raw: "@A:x@"}},
		},
		{
			name: "adjacent",
			line: "@a_1@@b@",
			want: []Tag{
				{Name: "a_1", Line: 3, ColStart: 1, ColEnd: 5, Raw: "@a_1@"},
				{Name: "b", Line: 3, ColStart: 6, ColEnd: 8, Raw: "@b@"},
			},
		},
		{
			name: "embedded",
			line: "mail me@HOST@ now",
			want: []Tag{{Name: "HOST", Line: 3, ColStart: 8, ColEnd: 13, Raw: "@HOST@"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Scan(tt.line, 3)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Scan(%q) = %+v, want %+v", tt.line, got, tt.want)
			}

			for _, tag := range got {
				if raw := tt.line[tag.ColStart-1 : tag.ColEnd]; raw != tag.Raw {
					t.Errorf("span %d-%d = %q, want %q", tag.ColStart, tag.ColEnd, raw, tag.Raw)
				}
			}
		})
	}
}

func TestScan_Stop(t *testing.T) {
	t.Parallel()

	n := 0
	for range scanLine("@A@ @B@ @C@", 1) {
		n++
		if n == 2 {
			break
		}
	}

	if n != 2 {
		t.Errorf("iterated %d tags, want 2", n)
	}
}
