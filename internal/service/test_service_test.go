package service

import (
	"errors"
	"testing"

	"github.com/ArturTovmasyan/ministry-backend/internal/dto"
	"github.com/ArturTovmasyan/ministry-backend/internal/repository"
)

func TestCreateTestPersistsQuestions(t *testing.T) {
	db := newTestDB(t)
	service := NewTestService(repository.NewTestRepository(db))

	created, err := service.CreateTest(dto.TestCreateDTO{
		Name: "Capitals",
		Questions: []dto.QuestionCreateDTO{
			{
				Title: "Capital of France?",
				Answers: []dto.AnswerCreateDTO{
					{Title: "Paris", Correct: true},
					{Title: "Lyon"},
				},
			},
			{
				Title: "Capital of Japan?",
				Answers: []dto.AnswerCreateDTO{
					{Title: "Osaka"},
					{Title: "Tokyo", Correct: true},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("creating test: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("created test has no id")
	}
	if len(created.Questions) != 2 {
		t.Fatalf("created questions = %d, want 2", len(created.Questions))
	}

	details, err := service.GetTestWithQuestions(created.ID)
	if err != nil {
		t.Fatalf("loading test: %v", err)
	}
	if len(details.Questions) != 2 || len(details.Questions[0].Answers) != 2 {
		t.Fatalf("loaded test = %+v, want 2 questions with 2 answers", details)
	}

	summaries, err := service.GetAllTests()
	if err != nil {
		t.Fatalf("listing tests: %v", err)
	}
	if len(summaries) != 1 || summaries[0].QuestionCount != 2 {
		t.Fatalf("summaries = %+v, want one test with 2 questions", summaries)
	}
}

func TestCreateTestRequiresOneCorrectAnswer(t *testing.T) {
	db := newTestDB(t)
	service := NewTestService(repository.NewTestRepository(db))

	_, err := service.CreateTest(dto.TestCreateDTO{
		Name: "Broken",
		Questions: []dto.QuestionCreateDTO{
			{
				Title: "No correct answer",
				Answers: []dto.AnswerCreateDTO{
					{Title: "A"},
					{Title: "B"},
				},
			},
		},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("no correct answer: err = %v, want validation", err)
	}

	_, err = service.CreateTest(dto.TestCreateDTO{
		Name: "Doubly broken",
		Questions: []dto.QuestionCreateDTO{
			{
				Title: "Two correct answers",
				Answers: []dto.AnswerCreateDTO{
					{Title: "A", Correct: true},
					{Title: "B", Correct: true},
				},
			},
		},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("two correct answers: err = %v, want validation", err)
	}

	var count int64
	db.Table("tests").Count(&count)
	if count != 0 {
		t.Fatalf("tests persisted despite validation failure: %d", count)
	}
}

func TestGetTestWithQuestionsNotFound(t *testing.T) {
	db := newTestDB(t)
	service := NewTestService(repository.NewTestRepository(db))

	if _, err := service.GetTestWithQuestions(404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing test: err = %v, want not found", err)
	}
}
