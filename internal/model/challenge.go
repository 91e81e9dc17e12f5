package model

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrIllegalTransition is returned when a state machine is asked to move
// backwards or out of a terminal state.
var ErrIllegalTransition = errors.New("illegal state transition")

// ChallengeState is the lifecycle of a head-to-head challenge. Transitions
// are one-directional: Created -> Started -> Finished.
type ChallengeState int

const (
	ChallengeCreated ChallengeState = iota
	ChallengeStarted
	ChallengeFinished
)

func (s ChallengeState) String() string {
	switch s {
	case ChallengeCreated:
		return "created"
	case ChallengeStarted:
		return "started"
	case ChallengeFinished:
		return "finished"
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// ChallengeTest pairs two students on the same test with its own scoring
// and finish rules. StudentScore/CompetitorScore hold ranking points
// (0/1/2/3), not percentages; they stay 0 until the challenge is finished.
type ChallengeTest struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	TestID          uint           `json:"test_id" gorm:"not null;index"`
	Test            Test           `json:"test,omitempty" gorm:"foreignKey:TestID"`
	StudentID       uint           `json:"student_id" gorm:"not null;index"`
	Student         User           `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	CompetitorID    *uint          `json:"competitor_id,omitempty" gorm:"index"`
	Competitor      *User          `json:"competitor,omitempty" gorm:"foreignKey:CompetitorID"`
	AssignTests     []AssignTest   `json:"assign_tests,omitempty" gorm:"foreignKey:ChallengeTestID"`
	StudentScore    int            `json:"student_score" gorm:"not null;default:0"`
	CompetitorScore int            `json:"competitor_score" gorm:"not null;default:0"`
	ConfirmToken    string         `json:"-" gorm:"index"`
	LastCheckedDate time.Time      `json:"last_checked_date"`
	Type            ChallengeState `json:"type" gorm:"not null;default:0;index"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// Transition advances the challenge state, rejecting anything that is not
// strictly forward. Finished is terminal.
func (c *ChallengeTest) Transition(next ChallengeState) error {
	if next <= c.Type {
		return fmt.Errorf("%w: challenge test %d cannot move %s -> %s", ErrIllegalTransition, c.ID, c.Type, next)
	}
	c.Type = next
	return nil
}

// ChallengePlayers is the winner/loser view shown after reconciliation.
type ChallengePlayers struct {
	WinnerName string   `json:"winner_name,omitempty"`
	LoserName  string   `json:"loser_name,omitempty"`
	Players    []string `json:"players,omitempty"`
}

// Players resolves the reconciled scores into winner/loser names, or both
// names when the challenge ended in a tie. Requires Student and Competitor
// to be loaded.
func (c *ChallengeTest) Players() ChallengePlayers {
	studentName := c.Student.FullName()
	competitorName := ""
	if c.Competitor != nil {
		competitorName = c.Competitor.FullName()
	}

	switch {
	case c.StudentScore == c.CompetitorScore:
		return ChallengePlayers{Players: []string{studentName, competitorName}}
	case c.StudentScore > c.CompetitorScore:
		return ChallengePlayers{WinnerName: studentName, LoserName: competitorName}
	default:
		return ChallengePlayers{WinnerName: competitorName, LoserName: studentName}
	}
}
