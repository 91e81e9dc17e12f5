package service

import (
	"fmt"

	"github.com/ArturTovmasyan/ministry-backend/internal/dto"
	"github.com/ArturTovmasyan/ministry-backend/internal/model"
	"github.com/ArturTovmasyan/ministry-backend/internal/repository"
	"github.com/jinzhu/copier"
)

// TestService covers instructor-side test authoring and listing.
type TestService interface {
	CreateTest(req dto.TestCreateDTO) (*dto.TestResponseDTO, error)
	GetAllTests() ([]dto.TestSummaryDTO, error)
	GetTestWithQuestions(testID uint) (*dto.TestResponseDTO, error)
}

type testService struct {
	testRepo repository.TestRepository
}

func NewTestService(testRepo repository.TestRepository) TestService {
	return &testService{testRepo: testRepo}
}

func (s *testService) CreateTest(req dto.TestCreateDTO) (*dto.TestResponseDTO, error) {
	for i, question := range req.Questions {
		correct := 0
		for _, answer := range question.Answers {
			if answer.Correct {
				correct++
			}
		}
		if correct != 1 {
			return nil, fmt.Errorf("%w: question %d must have exactly one correct answer", ErrValidation, i+1)
		}
	}

	test := model.Test{Name: req.Name}
	for _, question := range req.Questions {
		q := model.Question{Title: question.Title}
		for _, answer := range question.Answers {
			q.Answers = append(q.Answers, model.Answer{Title: answer.Title, Correct: answer.Correct})
		}
		test.Questions = append(test.Questions, q)
	}

	if err := s.testRepo.Create(&test); err != nil {
		return nil, fmt.Errorf("creating test: %w", err)
	}

	var response dto.TestResponseDTO
	if err := copier.Copy(&response, &test); err != nil {
		return nil, fmt.Errorf("mapping test response: %w", err)
	}
	return &response, nil
}

func (s *testService) GetAllTests() ([]dto.TestSummaryDTO, error) {
	summaries, err := s.testRepo.FindAllWithQuestionCount()
	if err != nil {
		return nil, fmt.Errorf("listing tests: %w", err)
	}

	result := make([]dto.TestSummaryDTO, 0, len(summaries))
	for _, summary := range summaries {
		result = append(result, dto.TestSummaryDTO{
			ID:            summary.ID,
			Name:          summary.Name,
			QuestionCount: summary.QuestionCount,
			CreatedAt:     summary.CreatedAt,
		})
	}
	return result, nil
}

func (s *testService) GetTestWithQuestions(testID uint) (*dto.TestResponseDTO, error) {
	test, err := s.testRepo.FindByIDWithQuestions(testID)
	if err != nil {
		return nil, fmt.Errorf("loading test %d: %w", testID, err)
	}
	if test == nil {
		return nil, fmt.Errorf("%w: test %d", ErrNotFound, testID)
	}

	var response dto.TestResponseDTO
	if err := copier.Copy(&response, test); err != nil {
		return nil, fmt.Errorf("mapping test response: %w", err)
	}
	return &response, nil
}
