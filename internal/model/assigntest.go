package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// AssignStatus tracks how far a student has driven one test attempt.
// It only ever moves forward: Assigned -> Started -> Completed.
type AssignStatus int

const (
	AssignStatusAssigned AssignStatus = iota
	AssignStatusStarted
	AssignStatusCompleted
)

func (s AssignStatus) String() string {
	switch s {
	case AssignStatusAssigned:
		return "assigned"
	case AssignStatusStarted:
		return "started"
	case AssignStatusCompleted:
		return "completed"
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// AssignOrigin records how the attempt came to exist. Kept separate from
// AssignStatus so a challenge-born attempt and a merely started one are
// never confused.
type AssignOrigin int

const (
	AssignOriginRegular AssignOrigin = iota
	AssignOriginChallenge
)

// AssignTest is one student's attempt at one test, either a regular
// assignment or one half of a challenge.
type AssignTest struct {
	ID              uint             `gorm:"primarykey" json:"id"`
	TestID          uint             `json:"test_id" gorm:"not null;index"`
	Test            Test             `json:"test,omitempty" gorm:"foreignKey:TestID"`
	StudentID       uint             `json:"student_id" gorm:"not null;index"`
	Student         User             `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	ChallengeTestID *uint            `json:"challenge_test_id,omitempty" gorm:"index"`
	Deadline        time.Time        `json:"deadline"`
	TimeLimit       int              `json:"time_limit"`
	Expectation     int              `json:"expectation"`
	Status          AssignStatus     `json:"status" gorm:"not null;default:0"`
	Score           int              `json:"score" gorm:"not null;default:0"`
	Origin          AssignOrigin     `json:"origin" gorm:"not null;default:0"`
	PassedQuestions []PassedQuestion `json:"-" gorm:"foreignKey:AssignTestID"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	DeletedAt       gorm.DeletedAt   `gorm:"index" json:"-"`
}

// AdvanceTo moves the attempt status forward, rejecting any backwards or
// repeated transition.
func (a *AssignTest) AdvanceTo(next AssignStatus) error {
	if next <= a.Status {
		return fmt.Errorf("%w: assign test %d cannot move %s -> %s", ErrIllegalTransition, a.ID, a.Status, next)
	}
	a.Status = next
	return nil
}

// IsCompetitorAttempt reports whether this attempt belongs to the
// challenge's competitor side.
func (a *AssignTest) IsCompetitorAttempt(competitorID *uint) bool {
	return competitorID != nil && a.StudentID == *competitorID
}
