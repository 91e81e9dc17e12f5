package model

import (
	"time"

	"gorm.io/gorm"
)

// PassedQuestion stores one student's latest submission for one question of
// an attempt. A row with a nil AnswerID was only marked for later.
type PassedQuestion struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	AssignTestID uint           `json:"assign_test_id" gorm:"not null;index:idx_passed_assign_question,unique"`
	QuestionID   uint           `json:"question_id" gorm:"not null;index:idx_passed_assign_question,unique"`
	StudentID    uint           `json:"student_id" gorm:"not null;index"`
	AnswerID     *uint          `json:"answer_id,omitempty"`
	Correct      bool           `json:"correct" gorm:"not null;default:false"`
	Marked       bool           `json:"marked" gorm:"not null;default:false"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Answered reports whether the student actually picked an answer, as
// opposed to only marking the question for later.
func (p *PassedQuestion) Answered() bool {
	return p.AnswerID != nil
}
