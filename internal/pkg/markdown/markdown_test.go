package markdown

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
		deny []string
	}{
		{name: "empty", in: "   "},
		{name: "emphasis", in: "Hello **world**", want: []string{"<strong>world</strong>"}},
		{name: "list", in: "- Go\n- Swift", want: []string{"<li>Go</li>", "<li>Swift</li>"}},
		{
			name: "external link",
			in:   "[site](https://example.com)",
			want: []string{`target="_blank"`, `rel="noopener noreferrer"`},
		},
		{name: "lazy image", in: "![a](/uploads/a.png)", want: []string{`<img loading="lazy" src="/uploads/a.png"`}},
		{name: "raw html dropped", in: "<script>alert(1)</script>", deny: []string{"<script>"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := string(Render(tc.in))
			if len(tc.want) == 0 && len(tc.deny) == 0 && got != "" {
				t.Fatalf("Render(%q) = %q, want empty", tc.in, got)
			}
			for _, w := range tc.want {
				if !strings.Contains(got, w) {
					t.Errorf("Render(%q) = %q, missing %q", tc.in, got, w)
				}
			}
			for _, d := range tc.deny {
				if strings.Contains(got, d) {
					t.Errorf("Render(%q) = %q, must not contain %q", tc.in, got, d)
				}
			}
		})
	}
}

func TestRenderInline(t *testing.T) {
	if got := string(RenderInline("just *text*")); got != "just <em>text</em>" {
		t.Fatalf("RenderInline = %q", got)
	}
	if got := string(RenderInline("one\n\ntwo")); !strings.HasPrefix(got, "<p>") {
		t.Fatalf("multi paragraph input lost its blocks: %q", got)
	}
}

func TestExcerpt(t *testing.T) {
	if got := Excerpt("**Bold** and _more_ words", 8); got != "Bold and…" {
		t.Fatalf("Excerpt = %q", got)
	}
	if got := Excerpt("short", 20); got != "short" {
		t.Fatalf("Excerpt = %q", got)
	}
}
