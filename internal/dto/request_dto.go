package dto

// PassQuestionDTO is one answer (or mark-for-later) submission for a
// question of an assigned test. AnswerID is nil when the student only
// marked the question.
type PassQuestionDTO struct {
	AssignTestID uint  `json:"assign_test_id" binding:"required"`
	QuestionID   uint  `json:"question_id" binding:"required"`
	AnswerID     *uint `json:"answer_id"`
	Marked       bool  `json:"marked"`
}

// ProviderEventDTO is a billing provider webhook event, pre-parsed by the
// provider adapter.
type ProviderEventDTO struct {
	ID   string               `json:"id" binding:"required"`
	Type string               `json:"type" binding:"required"`
	Data ProviderEventDataDTO `json:"data"`
}

type ProviderEventDataDTO struct {
	SubscriptionID string `json:"subscription_id"`
	InvoiceID      string `json:"invoice_id"`
	AttemptCount   int    `json:"attempt_count"`
	TotalCents     int64  `json:"total_cents"`
	PeriodEnd      int64  `json:"period_end"`
}
