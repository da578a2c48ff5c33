// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"

	"github.com/leseb/openresponses-cli/pkg/core/toolcall"
)

// toolFragment maps a classified tool-call view onto a display fragment.
// Shared by every renderer so a tool call reads the same regardless of
// output format. Absent fields simply contribute nothing.
func toolFragment(v toolcall.View) Fragment {
	f := NewFragment(v.Kind.String()).WithStatus(v.Phase.String())

	switch v.Kind {
	case toolcall.KindFileSearch, toolcall.KindWebSearch, toolcall.KindFindFiles:
		f = f.WithQueries(v.Queries)
		if v.ResultCount != nil {
			f = f.WithResultCount(*v.ResultCount)
		}

	case toolcall.KindFileRead, toolcall.KindPageRead:
		target := v.Filename
		if target == "" {
			target = v.FileID
		}
		if v.Page != nil {
			target = fmt.Sprintf("%s p.%d", target, *v.Page)
		}
		f = f.WithTarget(target)

	case toolcall.KindListFiles:
		f = f.WithTarget(v.FileID)
		if v.ResultCount != nil {
			f = f.WithResultCount(*v.ResultCount)
		}

	case toolcall.KindCodeInterpreter:
		if v.Code != "" {
			f = f.WithField("code", fmt.Sprintf("%d chars", len(v.Code)))
		}
		if v.Output != "" {
			f = f.WithField("output", fmt.Sprintf("%d chars", len(v.Output)))
		}

	case toolcall.KindFunction:
		if v.FunctionName != "" {
			call := v.FunctionName
			if v.Arguments != "" {
				call = fmt.Sprintf("%s(%s)", v.FunctionName, v.Arguments)
			}
			f = f.WithTarget(call)
		}
		if v.Output != "" {
			f = f.WithField("output", fmt.Sprintf("%d chars", len(v.Output)))
		}

	default:
		// Generic fallback: show the raw discriminant and whatever fields
		// the unknown kind happened to populate.
		f = f.WithField("type", v.RawType)
		f = f.WithQueries(v.Queries)
		if v.ResultCount != nil {
			f = f.WithResultCount(*v.ResultCount)
		}
		f = f.WithField("file", v.Filename)
		f = f.WithField("args", v.Arguments)
	}

	return f
}
