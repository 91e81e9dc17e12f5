package dto

// ErrorResponse is the generic error body.
type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// StatusResponse is a plain message body.
type StatusResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// PassQuestionResultDTO reports the attempt state after one submission.
type PassQuestionResultDTO struct {
	TestQuestionsFinish bool   `json:"test_questions_finish"`
	Score               int    `json:"score"`
	AlreadyFinished     bool   `json:"already_finished,omitempty"`
	ChallengeTestID     *uint  `json:"challenge_test_id,omitempty"`
	Message             string `json:"message,omitempty"`
}
