package dto

import "time"

// AnswerCreateDTO is one answer option within a question.
type AnswerCreateDTO struct {
	Title   string `json:"title" binding:"required"`
	Correct bool   `json:"correct"`
}

// QuestionCreateDTO is used within TestCreateDTO for test authoring.
type QuestionCreateDTO struct {
	Title   string            `json:"title" binding:"required"`
	Answers []AnswerCreateDTO `json:"answers" binding:"required,min=2,dive"`
}

// TestCreateDTO is for instructors to create a test with its questions.
type TestCreateDTO struct {
	Name      string              `json:"name" binding:"required"`
	Questions []QuestionCreateDTO `json:"questions" binding:"required,min=1,dive"`
}

// AnswerResponseDTO hides the correct flag from students.
type AnswerResponseDTO struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

type QuestionResponseDTO struct {
	ID      uint                `json:"id"`
	TestID  uint                `json:"test_id"`
	Title   string              `json:"title"`
	Answers []AnswerResponseDTO `json:"answers,omitempty"`
}

type TestResponseDTO struct {
	ID        uint                  `json:"id"`
	Name      string                `json:"name"`
	Questions []QuestionResponseDTO `json:"questions,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

// TestSummaryDTO is used for listing tests.
type TestSummaryDTO struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}
