package service

import (
	"fmt"
	"math"

	"github.com/ArturTovmasyan/ministry-backend/internal/dto"
	"github.com/ArturTovmasyan/ministry-backend/internal/model"
	"github.com/ArturTovmasyan/ministry-backend/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ScoreService maintains the running percentage score of one attempt as
// answers arrive, including edits of previously answered questions.
type ScoreService interface {
	SubmitAnswer(req dto.PassQuestionDTO) (*dto.PassQuestionResultDTO, error)
}

type scoreService struct {
	assignRepo repository.AssignTestRepository
	testRepo   repository.TestRepository
	answerRepo repository.AnswerRepository
	passedRepo repository.PassedQuestionRepository
	db         *gorm.DB
}

func NewScoreService(
	assignRepo repository.AssignTestRepository,
	testRepo repository.TestRepository,
	answerRepo repository.AnswerRepository,
	passedRepo repository.PassedQuestionRepository,
	db *gorm.DB,
) ScoreService {
	return &scoreService{
		assignRepo: assignRepo,
		testRepo:   testRepo,
		answerRepo: answerRepo,
		passedRepo: passedRepo,
		db:         db,
	}
}

func (s *scoreService) SubmitAnswer(req dto.PassQuestionDTO) (*dto.PassQuestionResultDTO, error) {
	assign, err := s.assignRepo.FindByID(req.AssignTestID)
	if err != nil {
		return nil, fmt.Errorf("loading assign test %d: %w", req.AssignTestID, err)
	}
	if assign == nil {
		return nil, fmt.Errorf("%w: assign test %d", ErrNotFound, req.AssignTestID)
	}

	if assign.Status == model.AssignStatusCompleted {
		return &dto.PassQuestionResultDTO{
			AlreadyFinished: true,
			Score:           assign.Score,
			ChallengeTestID: assign.ChallengeTestID,
			Message:         "This test already finished",
		}, nil
	}

	questionIDs, err := s.testRepo.QuestionIDs(assign.TestID)
	if err != nil {
		return nil, fmt.Errorf("loading questions for test %d: %w", assign.TestID, err)
	}
	if len(questionIDs) == 0 {
		return nil, fmt.Errorf("%w: test %d has no questions", ErrValidation, assign.TestID)
	}
	if !containsID(questionIDs, req.QuestionID) {
		return nil, fmt.Errorf("%w: question %d does not belong to test %d", ErrValidation, req.QuestionID, assign.TestID)
	}

	isRight := false
	if req.AnswerID != nil {
		isRight, err = s.answerRepo.IsCorrect(req.QuestionID, *req.AnswerID)
		if err != nil {
			return nil, fmt.Errorf("checking answer %d: %w", *req.AnswerID, err)
		}
	}

	answered, err := s.passedRepo.AnsweredQuestionIDs(assign.ID)
	if err != nil {
		return nil, fmt.Errorf("loading answered questions for assign test %d: %w", assign.ID, err)
	}

	// The very first submission moves a fresh assignment to started.
	if assign.Status == model.AssignStatusAssigned {
		if err := assign.AdvanceTo(model.AssignStatusStarted); err != nil {
			return nil, err
		}
	}

	existing, err := s.passedRepo.FindByAssignAndQuestion(assign.ID, req.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("loading passed question: %w", err)
	}

	total := len(questionIDs)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if existing != nil {
			// Resubmission: only a correctness flip changes the score.
			wasRight := existing.Correct && existing.Answered()
			switch {
			case !wasRight && isRight:
				assign.Score = addCorrectScore(assign.Score, total)
			case wasRight && !isRight && req.AnswerID != nil:
				assign.Score = revokeCorrectScore(assign.Score, total)
			}
			// A marked-only edit keeps the stored answer and score intact.
			if req.AnswerID != nil {
				existing.Correct = isRight
				existing.AnswerID = req.AnswerID
			}
			existing.Marked = req.Marked
			if err := tx.Save(existing).Error; err != nil {
				return fmt.Errorf("updating passed question %d: %w", existing.ID, err)
			}
		} else {
			passed := model.PassedQuestion{
				AssignTestID: assign.ID,
				QuestionID:   req.QuestionID,
				StudentID:    assign.StudentID,
				AnswerID:     req.AnswerID,
				Correct:      isRight,
				Marked:       req.Marked,
			}
			if err := tx.Create(&passed).Error; err != nil {
				return fmt.Errorf("creating passed question: %w", err)
			}
			if isRight {
				assign.Score = addCorrectScore(assign.Score, total)
			}
		}
		if err := tx.Save(assign).Error; err != nil {
			return fmt.Errorf("saving assign test %d: %w", assign.ID, err)
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Uint("assignTestID", assign.ID).Msg("SubmitAnswer: transaction failed")
		return nil, err
	}

	remaining := remainingQuestions(questionIDs, answered, req)
	return &dto.PassQuestionResultDTO{
		TestQuestionsFinish: remaining == 0,
		Score:               assign.Score,
		ChallengeTestID:     assign.ChallengeTestID,
	}, nil
}

// addCorrectScore applies one freshly correct answer: add 100/n,
// ceiling-rounded, clamped at 100.
func addCorrectScore(score, questionCount int) int {
	next := int(math.Ceil(float64(score) + 100.0/float64(questionCount)))
	if next > 100 {
		return 100
	}
	return next
}

// revokeCorrectScore reverts a previously correct answer: subtract 100/n,
// floor-rounded, clamped to [0,100].
func revokeCorrectScore(score, questionCount int) int {
	next := int(math.Floor(float64(score) - 100.0/float64(questionCount)))
	if next > 100 {
		next = 100
	}
	if next < 0 {
		next = 0
	}
	return next
}

func containsID(ids []uint, id uint) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// remainingQuestions counts the questions still unanswered after this
// submission. Marked-only submissions do not consume a question.
func remainingQuestions(questionIDs, answered []uint, req dto.PassQuestionDTO) int {
	answeredSet := make(map[uint]struct{}, len(answered)+1)
	for _, id := range answered {
		answeredSet[id] = struct{}{}
	}
	if req.AnswerID != nil {
		answeredSet[req.QuestionID] = struct{}{}
	}

	remaining := 0
	for _, id := range questionIDs {
		if _, ok := answeredSet[id]; !ok {
			remaining++
		}
	}
	return remaining
}
