// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the closed set of port kinds and directions.

package model

import "fmt"

// Kind distinguishes control-transfer ports from data ports.
type Kind int

const (
	Value Kind = iota
	Flow
)

func (k Kind) String() string {
	switch k {
	case Value:
		return "value"
	case Flow:
		return "flow"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Direction is the side of the node a port sits on.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Input {
		return Output
	}
	return Input
}

// StoresReference reports whether a port of the given kind and direction is
// the side that holds the connection reference. Such a port holds at most one
// reference; the opposite side may be referenced by many.
func StoresReference(k Kind, d Direction) bool {
	switch k {
	case Value:
		return d == Input
	case Flow:
		return d == Output
	default:
		panic(fmt.Sprintf("model: unknown port kind %d", int(k)))
	}
}
