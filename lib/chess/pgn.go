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


package chess

import (
	"fmt"
	"strconv"
	"strings"
)

type tag struct {
	name, value string
}

func (g Game) tags() []tag {
	return []tag{
		{"Event", g.Event},
		{"Site", g.Site},
		{"White", g.White},
		{"Black", g.Black},
		{"Result", g.Result},
		{"UTCDate", g.UTCDate},
		{"UTCTime", g.UTCTime},
		{"WhiteElo", strconv.Itoa(g.WhiteElo)},
		{"BlackElo", strconv.Itoa(g.BlackElo)},
		{"WhiteRatingDiff", strconv.Itoa(g.WhiteRatingDiff)},
		{"BlackRatingDiff", strconv.Itoa(g.BlackRatingDiff)},
		{"ECO", g.ECO},
		{"Opening", g.Opening},
		{"TimeControl", g.TimeControl},
		{"Termination", g.Termination},
	}
}

// FormatPGN renders g as a PGN tag block followed by a blank line and the
// move text terminated by the result.
func FormatPGN(g Game) string {
	var b strings.Builder
	for _, t := range g.tags() {
		fmt.Fprintf(&b, "[%s %q]\n", t.name, t.value)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", g.Moves, g.Result)
	return b.String()
}
