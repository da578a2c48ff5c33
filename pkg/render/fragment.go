// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"strings"
)

// Fragment is an immutable one-line summary of a tool call under
// construction. With* setters return a modified copy, so a fragment can be
// built up field by field and rendered without any shared mutable state.
// Adding a new optional field means adding a setter, not restructuring the
// render dispatch.
type Fragment struct {
	label   string
	status  string
	details []string
}

// NewFragment starts a fragment for a tool kind badge, e.g. "web search".
func NewFragment(label string) Fragment {
	return Fragment{label: label}
}

// WithStatus sets the lifecycle phase text.
func (f Fragment) WithStatus(status string) Fragment {
	f.status = status
	return f
}

// WithQueries appends the queries the call issued.
func (f Fragment) WithQueries(queries []string) Fragment {
	if len(queries) == 0 {
		return f
	}
	quoted := make([]string, len(queries))
	for i, q := range queries {
		quoted[i] = fmt.Sprintf("%q", q)
	}
	return f.withDetail(strings.Join(quoted, ", "))
}

// WithResultCount appends the number of results once known.
func (f Fragment) WithResultCount(n int) Fragment {
	noun := "results"
	if n == 1 {
		noun = "result"
	}
	return f.withDetail(fmt.Sprintf("%d %s", n, noun))
}

// WithTarget appends the file, page, or path the call operates on.
func (f Fragment) WithTarget(target string) Fragment {
	if target == "" {
		return f
	}
	return f.withDetail(target)
}

// WithField appends an arbitrary key=value pair. Used by the generic
// fallback to show whatever fields an unknown tool kind carries.
func (f Fragment) WithField(key, value string) Fragment {
	if value == "" {
		return f
	}
	return f.withDetail(fmt.Sprintf("%s=%s", key, value))
}

func (f Fragment) withDetail(d string) Fragment {
	// Copy before append: fragments derived from a common prefix must not
	// share backing arrays.
	details := make([]string, len(f.details), len(f.details)+1)
	copy(details, f.details)
	f.details = append(details, d)
	return f
}

// Line renders the fragment as plain text: "label [status] detail; detail".
func (f Fragment) Line() string {
	var sb strings.Builder
	sb.WriteString(f.label)
	if f.status != "" {
		sb.WriteString(" [")
		sb.WriteString(f.status)
		sb.WriteString("]")
	}
	if len(f.details) > 0 {
		sb.WriteString(" ")
		sb.WriteString(strings.Join(f.details, "; "))
	}
	return sb.String()
}
