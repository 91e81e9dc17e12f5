package dto

// ChallengeCreateDTO is the request body for starting a challenge.
type ChallengeCreateDTO struct {
	TestID       uint `json:"test_id" binding:"required"`
	StudentID    uint `json:"student_id" binding:"required"`
	CompetitorID uint `json:"competitor_id" binding:"required"`
}

// ChallengeCreatedDTO reports the newly created challenge. AssignTestID is
// the initiator's attempt; the competitor receives theirs via the
// confirmation link.
type ChallengeCreatedDTO struct {
	ChallengeTestID uint   `json:"challenge_test_id"`
	AssignTestID    uint   `json:"assign_test_id"`
	ConfirmURL      string `json:"confirm_url"`
}

// ChallengeTimeLimitDTO reports the outcome of a time-limit check.
type ChallengeTimeLimitDTO struct {
	Finished bool   `json:"finished"`
	Message  string `json:"message"`
}

// FinishTestResultDTO reports the attempt state after a student finished,
// including the challenge outcome once both sides are done.
type FinishTestResultDTO struct {
	AssignTestID    uint     `json:"assign_test_id"`
	Score           int      `json:"score"`
	ChallengeStatus string   `json:"challenge_status,omitempty"`
	WinnerName      string   `json:"winner_name,omitempty"`
	LoserName       string   `json:"loser_name,omitempty"`
	Players         []string `json:"players,omitempty"`
}

// ChallengeRankDTO is one public leaderboard entry.
type ChallengeRankDTO struct {
	UserID   uint   `json:"user_id"`
	FullName string `json:"full_name"`
	Country  string `json:"country"`
	Score    int    `json:"score"`
}
