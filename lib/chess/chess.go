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


// Package chess generates fake chess game records and formats them as PGN.
package chess

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

const (
	minElo        = 1000
	maxElo        = 3000
	minRatingDiff = -100
	maxRatingDiff = 100

	// PGN tag values use dots in dates.
	utcDateLayout = "2006.01.02"
	utcTimeLayout = "15:04:05"
)

// Opening is an entry of the opening catalog, identified by its ECO code.
type Opening struct {
	ECO   string
	Name  string
	Moves string
}

// Event pairs an event label with the time control it is played at.
type Event struct {
	Label       string
	TimeControl string
}

// Game is a single generated game. Field order matches the JSON key order.
type Game struct {
	Event           string `json:"event"`
	Site            string `json:"site"`
	White           string `json:"white"`
	Black           string `json:"black"`
	Result          string `json:"result"`
	UTCDate         string `json:"utc_date"`
	UTCTime         string `json:"utc_time"`
	WhiteElo        int    `json:"white_elo"`
	BlackElo        int    `json:"black_elo"`
	WhiteRatingDiff int    `json:"white_rating_diff"`
	BlackRatingDiff int    `json:"black_rating_diff"`
	ECO             string `json:"eco"`
	Opening         string `json:"opening"`
	TimeControl     string `json:"time_control"`
	Termination     string `json:"termination"`
	Moves           string `json:"moves"`
}

var openings = [...]Opening{
	{"C50", "Italian Game", "1. e4 e5 2. Nf3 Nc6 3. Bc4"},
	{"B20", "Sicilian Defense", "1. e4 c5"},
	{"C00", "French Defense", "1. e4 e6"},
	{"B10", "Caro-Kann Defense", "1. e4 c6"},
	{"C60", "Ruy Lopez (Spanish Opening)", "1. e4 e5 2. Nf3 Nc6 3. Bb5"},
	{"D10", "Slav Defense", "1. d4 d5 2. c4 c6"},
	{"D30", "Queens Gambit Declined", "1. d4 d5 2. c4 e6"},
	{"E60", "Kings Indian Defense", "1. d4 Nf6 2. c4 g6 3. Nc3 Bg7"},
	{"E20", "Nimzo-Indian Defense", "1. d4 Nf6 2. c4 e6 3. Nc3 Bb4"},
}

var events = [...]Event{
	{"Rated Bullet game", "60+0"},
	{"Rated Bullet game", "120+1"},
	{"Rated Blitz game", "300+0"},
	{"Rated Blitz game", "300+3"},
	{"Rated Classical game", "1800+0"},
	{"Rated Classical game", "1800+5"},
}

var (
	sites        = []string{"https://lichess.org", "https://www.chess.com"}
	results      = []string{"1-0", "0-1", "1/2-1/2"}
	terminations = []string{"Normal", "Time forfeit", "Abandoned"}
)

// Openings returns a copy of the opening catalog.
func Openings() []Opening {
	return append([]Opening(nil), openings[:]...)
}

// Events returns a copy of the event catalog.
func Events() []Event {
	return append([]Event(nil), events[:]...)
}

// Sites returns the sites a game can be played on.
func Sites() []string { return append([]string(nil), sites...) }

// Results returns the possible game results.
func Results() []string { return append([]string(nil), results...) }

// Terminations returns the possible termination reasons.
func Terminations() []string { return append([]string(nil), terminations...) }

// Provider generates games. It is not safe for concurrent use.
type Provider struct {
	fake *gofakeit.Faker
	now  func() time.Time

	// Pickers default to uniform catalog samples; tests pin them.
	pickOpening func() Opening
	pickEvent   func() Event
}

// NewProvider returns a Provider seeded with seed. A zero seed picks a random one.
func NewProvider(seed uint64) *Provider {
	p := &Provider{
		fake: gofakeit.New(seed),
		now:  time.Now,
	}
	p.pickOpening = p.sampleOpening
	p.pickEvent = p.sampleEvent
	return p
}

// Opening returns a uniformly sampled catalog opening.
func (p *Provider) Opening() Opening {
	return p.pickOpening()
}

// Event returns a uniformly sampled catalog event.
func (p *Provider) Event() Event {
	return p.pickEvent()
}

func (p *Provider) sampleOpening() Opening {
	return openings[p.fake.Number(0, len(openings)-1)]
}

func (p *Provider) sampleEvent() Event {
	return events[p.fake.Number(0, len(events)-1)]
}

// Game returns a new random game. Opening and event fields are always taken
// from a single catalog entry each.
func (p *Provider) Game() Game {
	opening := p.Opening()
	event := p.Event()
	return Game{
		Event:           event.Label,
		Site:            p.fake.RandomString(sites),
		White:           p.fake.Username(),
		Black:           p.fake.Username(),
		Result:          p.fake.RandomString(results),
		UTCDate:         p.date().Format(utcDateLayout),
		UTCTime:         p.timeOfDay().Format(utcTimeLayout),
		WhiteElo:        p.fake.Number(minElo, maxElo),
		BlackElo:        p.fake.Number(minElo, maxElo),
		WhiteRatingDiff: p.fake.Number(minRatingDiff, maxRatingDiff),
		BlackRatingDiff: p.fake.Number(minRatingDiff, maxRatingDiff),
		ECO:             opening.ECO,
		Opening:         opening.Name,
		TimeControl:     event.TimeControl,
		Termination:     p.fake.RandomString(terminations),
		Moves:           opening.Moves,
	}
}

// GamePGN returns a new random game rendered as PGN.
func (p *Provider) GamePGN() string {
	return FormatPGN(p.Game())
}

// date returns a day between one year ago and today.
func (p *Provider) date() time.Time {
	end := p.now().UTC()
	return p.fake.DateRange(end.AddDate(-1, 0, 0), end)
}

func (p *Provider) timeOfDay() time.Time {
	return time.Date(0, 1, 1, p.fake.Hour(), p.fake.Minute(), p.fake.Second(), 0, time.UTC)
}
