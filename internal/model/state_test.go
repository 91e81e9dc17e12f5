package model

import (
	"errors"
	"testing"
)

func TestChallengeTransition(t *testing.T) {
	challenge := ChallengeTest{Type: ChallengeCreated}

	if err := challenge.Transition(ChallengeStarted); err != nil {
		t.Fatalf("created -> started: %v", err)
	}
	if err := challenge.Transition(ChallengeFinished); err != nil {
		t.Fatalf("started -> finished: %v", err)
	}

	if err := challenge.Transition(ChallengeStarted); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("finished -> started: err = %v, want illegal transition", err)
	}
	if err := challenge.Transition(ChallengeFinished); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("finished -> finished: err = %v, want illegal transition", err)
	}
	if challenge.Type != ChallengeFinished {
		t.Fatalf("state mutated by rejected transition: %s", challenge.Type)
	}
}

func TestChallengeSkipsStarted(t *testing.T) {
	// Force-finishing an unconfirmed challenge jumps created -> finished.
	challenge := ChallengeTest{Type: ChallengeCreated}
	if err := challenge.Transition(ChallengeFinished); err != nil {
		t.Fatalf("created -> finished: %v", err)
	}
}

func TestAssignAdvanceTo(t *testing.T) {
	assign := AssignTest{Status: AssignStatusAssigned}

	if err := assign.AdvanceTo(AssignStatusStarted); err != nil {
		t.Fatalf("assigned -> started: %v", err)
	}
	if err := assign.AdvanceTo(AssignStatusStarted); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("started -> started: err = %v, want illegal transition", err)
	}
	if err := assign.AdvanceTo(AssignStatusCompleted); err != nil {
		t.Fatalf("started -> completed: %v", err)
	}
	if err := assign.AdvanceTo(AssignStatusAssigned); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("completed -> assigned: err = %v, want illegal transition", err)
	}
}

func TestChallengePlayers(t *testing.T) {
	competitor := User{FirstName: "Bob", LastName: "Jones"}
	challenge := ChallengeTest{
		Student:    User{FirstName: "Ann", LastName: "Smith"},
		Competitor: &competitor,
	}

	challenge.StudentScore, challenge.CompetitorScore = 3, 0
	players := challenge.Players()
	if players.WinnerName != "Ann Smith" || players.LoserName != "Bob Jones" {
		t.Fatalf("student win players = %+v", players)
	}

	challenge.StudentScore, challenge.CompetitorScore = 1, 3
	players = challenge.Players()
	if players.WinnerName != "Bob Jones" || players.LoserName != "Ann Smith" {
		t.Fatalf("competitor win players = %+v", players)
	}

	challenge.StudentScore, challenge.CompetitorScore = 2, 2
	players = challenge.Players()
	if players.WinnerName != "" || players.LoserName != "" {
		t.Fatalf("tie produced a winner: %+v", players)
	}
	if len(players.Players) != 2 {
		t.Fatalf("tie players = %v, want both names", players.Players)
	}
}

func TestUserFullName(t *testing.T) {
	user := User{FirstName: "Ann", LastName: "Smith"}
	if got := user.FullName(); got != "Ann Smith" {
		t.Fatalf("FullName = %q", got)
	}
	solo := User{FirstName: "Cher"}
	if got := solo.FullName(); got != "Cher" {
		t.Fatalf("FullName without last name = %q", got)
	}
}
