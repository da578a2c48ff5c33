// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import "strings"

// Input is one parsed line of user input: either a slash command with
// arguments, or a plain message.
type Input struct {
	Command string // empty when the line is a plain message
	Args    string
	Message string
}

// IsCommand reports whether the input parsed as a slash command.
func (in Input) IsCommand() bool {
	return in.Command != ""
}

// ParseInput classifies a line of user input.
//
//	"/save out.json"  -> command "save", args "out.json"
//	"//help"          -> plain message "/help" (escaped literal slash)
//	"hello"           -> plain message "hello"
//
// A bare "/" or a slash followed by whitespace is a plain message: there is
// no command name to dispatch on.
func ParseInput(line string) Input {
	if strings.HasPrefix(line, "//") {
		return Input{Message: line[1:]}
	}
	if !strings.HasPrefix(line, "/") {
		return Input{Message: line}
	}

	rest := line[1:]
	name, args, _ := strings.Cut(rest, " ")
	if name == "" {
		return Input{Message: line}
	}
	return Input{
		Command: strings.ToLower(name),
		Args:    strings.TrimSpace(args),
	}
}
