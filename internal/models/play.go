package models

import "github.com/vytor/birdtalk/internal/progress"

// Choice is one card of a round.
type Choice struct {
	BirdView
	// Disabled marks a card already picked wrongly this round.
	Disabled bool `json:"disabled"`
}

// Round is the client view of a play session. The answer is only revealed
// once the round has been answered correctly.
type Round struct {
	SessionID       string      `json:"session_id"`
	Pack            string      `json:"pack"`
	PackName        string      `json:"pack_name,omitempty"`
	Number          int         `json:"round"`
	Choices         []Choice    `json:"choices"`
	SoundURL        string      `json:"sound_url"`
	Answered        bool        `json:"answered"`
	CorrectBirdID   *uint64     `json:"correct_bird_id,omitempty"`
	Learned         int         `json:"learned"`
	Total           int         `json:"total"`
	PercentComplete int         `json:"percent_complete"`
	AlreadyLearned  bool        `json:"already_learned"`
	Complete        bool        `json:"complete"`
	Result          *GameResult `json:"result,omitempty"`
}

// Verdict is the outcome of one answer.
type Verdict struct {
	Correct         bool   `json:"correct"`
	BirdID          uint64 `json:"bird_id"`
	Learned         bool   `json:"learned"`
	PercentComplete int    `json:"percent_complete"`
	GameComplete    bool   `json:"game_complete"`
}

// GameResult summarizes a finished session against the progress at its start.
type GameResult struct {
	Gains   progress.Gains   `json:"gains"`
	Summary progress.Summary `json:"summary"`
}
