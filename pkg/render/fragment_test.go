// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

package render

import "testing"

func TestFragmentLine(t *testing.T) {
	cases := []struct {
		name string
		f    Fragment
		want string
	}{
		{
			"label only",
			NewFragment("web search"),
			"web search",
		},
		{
			"label and status",
			NewFragment("web search").WithStatus("running"),
			"web search [running]",
		},
		{
			"queries and count",
			NewFragment("web search").WithStatus("completed").
				WithQueries([]string{"go generics", "go iterators"}).
				WithResultCount(3),
			`web search [completed] "go generics", "go iterators"; 3 results`,
		},
		{
			"singular result",
			NewFragment("file search").WithResultCount(1),
			"file search 1 result",
		},
		{
			"target",
			NewFragment("file read").WithStatus("completed").WithTarget("report.pdf p.4"),
			"file read [completed] report.pdf p.4",
		},
		{
			"empty setters are no-ops",
			NewFragment("list files").WithTarget("").WithField("args", "").WithQueries(nil),
			"list files",
		},
		{
			"generic fields",
			NewFragment("tool call").WithField("type", "image_generation_call").WithField("args", "size=1024"),
			"tool call type=image_generation_call; args=size=1024",
		},
	}

	for _, tc := range cases {
		if got := tc.f.Line(); got != tc.want {
			t.Errorf("%s: Line() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestFragmentImmutable(t *testing.T) {
	base := NewFragment("web search").WithStatus("running").WithQueries([]string{"q"})

	a := base.WithResultCount(3)
	b := base.WithTarget("elsewhere")

	if got := base.Line(); got != `web search [running] "q"` {
		t.Errorf("base mutated by derived fragments: %q", got)
	}
	if got := a.Line(); got != `web search [running] "q"; 3 results` {
		t.Errorf("derived a = %q", got)
	}
	if got := b.Line(); got != `web search [running] "q"; elsewhere` {
		t.Errorf("derived b = %q", got)
	}
}
