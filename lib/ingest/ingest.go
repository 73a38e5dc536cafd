// Copyright 2020 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ingest moves generated chess games from a Source to a Destination.
package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks unsupported kinds, formats or missing settings.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIO marks filesystem, network and storage failures.
	ErrIO = errors.New("i/o failure")
)

func invalidArgf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, a...))
}

func ioErrorf(err error, format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, fmt.Sprintf(format, a...), err)
}

// Kind selects what a Source produces.
type Kind string

const (
	// KindPGN produces PGN text.
	KindPGN Kind = "pgn"
	// KindGame produces structured games.
	KindGame Kind = "game"
)

// ParseKind validates s as a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindPGN, KindGame:
		return k, nil
	}
	return "", invalidArgf("unsupported kind %q (want %q or %q)", s, KindPGN, KindGame)
}

// Format is the serialization written by a Destination; it also names the file extension.
type Format string

const (
	FormatPGN  Format = "pgn"
	FormatJSON Format = "json"
)

// ParseFormat validates s as a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatPGN, FormatJSON:
		return f, nil
	}
	return "", invalidArgf("unsupported format %q (want %q or %q)", s, FormatPGN, FormatJSON)
}
