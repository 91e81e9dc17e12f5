package service

import (
	"fmt"
	"time"

	"github.com/ArturTovmasyan/ministry-backend/config"
	"github.com/ArturTovmasyan/ministry-backend/internal/dto"
	"github.com/ArturTovmasyan/ministry-backend/internal/model"
	"github.com/ArturTovmasyan/ministry-backend/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	// challengeWindow is the hard deadline: a challenge not finished by
	// both sides within it is force-reconciled.
	challengeWindow = 24 * time.Hour
	// checkStaleness gates the time-limit endpoint: a poll only forces a
	// finish when the previous poll is at least this old.
	checkStaleness = time.Hour

	confirmTokenLength   = 25
	challengeTimeLimit   = 90
	challengeExpectation = 70

	// loserConsolationFloor is the raw percentage above which the losing
	// side still earns one ranking point.
	loserConsolationFloor = 75
)

// ChallengeTestService owns the challenge lifecycle: creation with the
// 24h cooldown, token confirmation, time-limit enforcement and the
// winner/loser reconciliation that is recorded exactly once.
type ChallengeTestService interface {
	Create(req dto.ChallengeCreateDTO) (*dto.ChallengeCreatedDTO, error)
	Confirm(confirmToken string, assignTestID uint) (string, error)
	CheckTimeLimit(challengeTestID uint) (*dto.ChallengeTimeLimitDTO, error)
	FinishAssignTest(assignTestID uint) (*dto.FinishTestResultDTO, error)
	AutoFinishIfExpired(challengeTestID uint) (bool, error)
	SweepExpired(studentID *uint) error
	CompetitorFinished(challenge *model.ChallengeTest) bool
}

type challengeTestService struct {
	challengeRepo repository.ChallengeTestRepository
	assignRepo    repository.AssignTestRepository
	testRepo      repository.TestRepository
	userRepo      repository.UserRepository
	leaderboard   LeaderboardService
	notifier      Notifier
	clock         Clock
	cfg           *config.Config
	db            *gorm.DB
}

func NewChallengeTestService(
	challengeRepo repository.ChallengeTestRepository,
	assignRepo repository.AssignTestRepository,
	testRepo repository.TestRepository,
	userRepo repository.UserRepository,
	leaderboard LeaderboardService,
	notifier Notifier,
	clock Clock,
	cfg *config.Config,
	db *gorm.DB,
) ChallengeTestService {
	return &challengeTestService{
		challengeRepo: challengeRepo,
		assignRepo:    assignRepo,
		testRepo:      testRepo,
		userRepo:      userRepo,
		leaderboard:   leaderboard,
		notifier:      notifier,
		clock:         clock,
		cfg:           cfg,
		db:            db,
	}
}

// Create validates the cooldown and participants, then persists the
// challenge and both attempts atomically. The initiator's attempt starts
// in Started, the competitor's stays Assigned until they confirm.
func (s *challengeTestService) Create(req dto.ChallengeCreateDTO) (*dto.ChallengeCreatedDTO, error) {
	now := s.clock.Now()

	latest, err := s.challengeRepo.FindLatestByStudent(req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("loading latest challenge for student %d: %w", req.StudentID, err)
	}
	if latest != nil && latest.CreatedAt.Add(challengeWindow).After(now) {
		return nil, ErrChallengeCooldown
	}

	test, err := s.testRepo.FindByID(req.TestID)
	if err != nil {
		return nil, fmt.Errorf("loading test %d: %w", req.TestID, err)
	}
	student, err := s.userRepo.FindByID(req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("loading student %d: %w", req.StudentID, err)
	}
	competitor, err := s.userRepo.FindByID(req.CompetitorID)
	if err != nil {
		return nil, fmt.Errorf("loading competitor %d: %w", req.CompetitorID, err)
	}
	if test == nil || student == nil || competitor == nil {
		return nil, fmt.Errorf("%w: invalid post data", ErrNotFound)
	}

	token, err := GenerateToken(confirmTokenLength)
	if err != nil {
		return nil, err
	}

	challenge := model.ChallengeTest{
		TestID:          test.ID,
		StudentID:       student.ID,
		CompetitorID:    &competitor.ID,
		ConfirmToken:    token,
		LastCheckedDate: now,
		Type:            model.ChallengeCreated,
	}
	var studentAssign, competitorAssign model.AssignTest

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&challenge).Error; err != nil {
			return fmt.Errorf("creating challenge test: %w", err)
		}
		studentAssign = newChallengeAssign(test.ID, student.ID, challenge.ID, model.AssignStatusStarted, now)
		competitorAssign = newChallengeAssign(test.ID, competitor.ID, challenge.ID, model.AssignStatusAssigned, now)
		if err := tx.Create(&studentAssign).Error; err != nil {
			return fmt.Errorf("creating student assign test: %w", err)
		}
		if err := tx.Create(&competitorAssign).Error; err != nil {
			return fmt.Errorf("creating competitor assign test: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	confirmURL := fmt.Sprintf("%s/api/public/v1/confirm/challenge-test?assignTestId=%d&ct=%s",
		s.cfg.Hosts.Backend, competitorAssign.ID, token)

	// Notification is best-effort; the challenge is already committed.
	job := NotificationJob{
		Template: TemplateChallengeInvite,
		ToEmail:  competitor.Email,
		Subject:  "You have been challenged!",
		Variables: map[string]string{
			"test":                  test.Name,
			"sender":                student.FullName(),
			"competitor":            competitor.FullName(),
			"confirm_challenge_url": confirmURL,
		},
	}
	if err := s.notifier.Send(job); err != nil {
		log.Error().Err(err).Uint("challengeTestID", challenge.ID).Msg("Create: failed to queue invite notification")
	}

	return &dto.ChallengeCreatedDTO{
		ChallengeTestID: challenge.ID,
		AssignTestID:    studentAssign.ID,
		ConfirmURL:      confirmURL,
	}, nil
}

// Confirm consumes the single-use token and moves both the challenge and
// the competitor's attempt to Started. A replayed link no longer matches
// any row and surfaces as ErrNotFound, which the controller turns into a
// generic redirect.
func (s *challengeTestService) Confirm(confirmToken string, assignTestID uint) (string, error) {
	challenge, err := s.challengeRepo.FindByConfirmToken(confirmToken)
	if err != nil {
		return "", fmt.Errorf("loading challenge by token: %w", err)
	}
	assign, err := s.assignRepo.FindByID(assignTestID)
	if err != nil {
		return "", fmt.Errorf("loading assign test %d: %w", assignTestID, err)
	}
	if challenge == nil || assign == nil {
		return "", ErrNotFound
	}

	if err := challenge.Transition(model.ChallengeStarted); err != nil {
		// Finished or already started challenges cannot be confirmed again.
		return "", ErrNotFound
	}
	if err := assign.AdvanceTo(model.AssignStatusStarted); err != nil {
		return "", ErrNotFound
	}
	challenge.ConfirmToken = ""

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(challenge).Error; err != nil {
			return fmt.Errorf("saving challenge test %d: %w", challenge.ID, err)
		}
		if err := tx.Save(assign).Error; err != nil {
			return fmt.Errorf("saving assign test %d: %w", assign.ID, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/taking-test/%d", s.cfg.Hosts.Web, assign.ID), nil
}

// CheckTimeLimit refreshes the challenge's poll timestamp, or finishes it
// once both the 1h staleness window and the 24h deadline have elapsed.
func (s *challengeTestService) CheckTimeLimit(challengeTestID uint) (*dto.ChallengeTimeLimitDTO, error) {
	challenge, err := s.challengeRepo.FindByIDWithParticipants(challengeTestID)
	if err != nil {
		return nil, fmt.Errorf("loading challenge test %d: %w", challengeTestID, err)
	}
	if challenge == nil || challenge.Type == model.ChallengeFinished {
		return nil, fmt.Errorf("%w: challenge test %d not found or finished", ErrNotFound, challengeTestID)
	}

	now := s.clock.Now()
	if challenge.LastCheckedDate.Add(checkStaleness).Before(now) &&
		challenge.CreatedAt.Add(challengeWindow).Before(now) {
		if err := s.reconcile(challenge); err != nil {
			return nil, err
		}
		return &dto.ChallengeTimeLimitDTO{
			Finished: true,
			Message:  "Challenge test was successfully calculated and finished, because time is limited.",
		}, nil
	}

	challenge.LastCheckedDate = now
	if err := s.challengeRepo.Save(challenge); err != nil {
		return nil, fmt.Errorf("saving challenge test %d: %w", challenge.ID, err)
	}

	expiresAt := challenge.CreatedAt.Add(challengeWindow)
	return &dto.ChallengeTimeLimitDTO{
		Finished: false,
		Message:  fmt.Sprintf("Your test limit will be finished at %s", expiresAt.Format("2006-01-02 15:04:05")),
	}, nil
}

// CompetitorFinished reports whether every attempt of the challenge is
// completed. A challenge without attempts never counts as finished.
func (s *challengeTestService) CompetitorFinished(challenge *model.ChallengeTest) bool {
	if len(challenge.AssignTests) == 0 {
		return false
	}
	for _, assign := range challenge.AssignTests {
		if assign.Status != model.AssignStatusCompleted {
			return false
		}
	}
	return true
}

// FinishAssignTest completes one student's attempt and, for a
// challenge-born attempt, reconciles the challenge once the other side is
// done too.
func (s *challengeTestService) FinishAssignTest(assignTestID uint) (*dto.FinishTestResultDTO, error) {
	assign, err := s.assignRepo.FindByID(assignTestID)
	if err != nil {
		return nil, fmt.Errorf("loading assign test %d: %w", assignTestID, err)
	}
	if assign == nil {
		return nil, fmt.Errorf("%w: assign test %d", ErrNotFound, assignTestID)
	}

	if assign.Status != model.AssignStatusCompleted {
		if err := assign.AdvanceTo(model.AssignStatusCompleted); err != nil {
			return nil, err
		}
		if err := s.assignRepo.Save(assign); err != nil {
			return nil, fmt.Errorf("saving assign test %d: %w", assign.ID, err)
		}
	}

	result := &dto.FinishTestResultDTO{AssignTestID: assign.ID, Score: assign.Score}
	if assign.ChallengeTestID == nil {
		return result, nil
	}

	challenge, err := s.challengeRepo.FindByIDWithParticipants(*assign.ChallengeTestID)
	if err != nil {
		return nil, fmt.Errorf("loading challenge test %d: %w", *assign.ChallengeTestID, err)
	}
	if challenge == nil {
		return result, nil
	}

	switch {
	case challenge.Type == model.ChallengeFinished:
		result.ChallengeStatus = "Challenge test already has been auto finished!"
		applyPlayers(result, challenge)
	case s.CompetitorFinished(challenge):
		if err := s.reconcile(challenge); err != nil {
			return nil, err
		}
		result.ChallengeStatus = "Finished"
		applyPlayers(result, challenge)
	default:
		result.ChallengeStatus = "Waiting your competitor to finish the challenge."
	}
	return result, nil
}

// AutoFinishIfExpired reconciles the challenge when its 24h window has
// passed. Used after answer submissions on challenge-born attempts.
func (s *challengeTestService) AutoFinishIfExpired(challengeTestID uint) (bool, error) {
	challenge, err := s.challengeRepo.FindByIDWithParticipants(challengeTestID)
	if err != nil {
		return false, fmt.Errorf("loading challenge test %d: %w", challengeTestID, err)
	}
	if challenge == nil || challenge.Type == model.ChallengeFinished {
		return false, nil
	}
	if !challenge.CreatedAt.Add(challengeWindow).Before(s.clock.Now()) {
		return false, nil
	}
	if err := s.reconcile(challenge); err != nil {
		return false, err
	}
	return true, nil
}

// SweepExpired force-finishes every non-finished challenge past its 24h
// deadline, optionally narrowed to challenges involving one student.
func (s *challengeTestService) SweepExpired(studentID *uint) error {
	challenges, err := s.challengeRepo.FindNotFinished(studentID)
	if err != nil {
		return fmt.Errorf("loading not finished challenges: %w", err)
	}

	now := s.clock.Now()
	for i := range challenges {
		if !challenges[i].CreatedAt.Add(challengeWindow).Before(now) {
			continue
		}
		if err := s.reconcile(&challenges[i]); err != nil {
			log.Error().Err(err).Uint("challengeTestID", challenges[i].ID).Msg("SweepExpired: reconcile failed")
		}
	}
	return nil
}

// challengeOutcome carries the reconciled ranking points out of the
// transaction so notifications can fire after commit.
type challengeOutcome struct {
	studentScore    int
	competitorScore int
	rawTie          bool
	bothSides       bool
}

// reconcile is the single place a challenge is finished: it claims the
// Finished state with a guarded update so concurrent finish calls collapse
// into one winner, force-completes both attempts, converts raw percentages
// into ranking points, appends the history rows and queues the outcome
// notifications. Requires Student/Competitor preloaded on the challenge.
func (s *challengeTestService) reconcile(challenge *model.ChallengeTest) error {
	var outcome challengeOutcome
	claimed := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		won, err := s.challengeRepo.ClaimFinished(tx, challenge.ID)
		if err != nil {
			return fmt.Errorf("claiming challenge test %d: %w", challenge.ID, err)
		}
		if !won {
			return nil
		}
		claimed = true

		var assigns []model.AssignTest
		if err := tx.Where("challenge_test_id = ?", challenge.ID).Find(&assigns).Error; err != nil {
			return fmt.Errorf("loading assign tests for challenge %d: %w", challenge.ID, err)
		}

		var studentAttempt, competitorAttempt *model.AssignTest
		for i := range assigns {
			assigns[i].Status = model.AssignStatusCompleted
			if assigns[i].IsCompetitorAttempt(challenge.CompetitorID) {
				competitorAttempt = &assigns[i]
			} else {
				studentAttempt = &assigns[i]
			}
			if err := tx.Save(&assigns[i]).Error; err != nil {
				return fmt.Errorf("completing assign test %d: %w", assigns[i].ID, err)
			}
		}

		outcome = rankScores(studentAttempt, competitorAttempt)
		err = tx.Model(&model.ChallengeTest{}).
			Where("id = ?", challenge.ID).
			Updates(map[string]interface{}{
				"student_score":    outcome.studentScore,
				"competitor_score": outcome.competitorScore,
			}).Error
		if err != nil {
			return fmt.Errorf("saving challenge scores for %d: %w", challenge.ID, err)
		}

		return s.appendHistory(tx, challenge, outcome)
	})
	if err != nil {
		return fmt.Errorf("reconciling challenge test %d: %w", challenge.ID, err)
	}
	if !claimed {
		log.Info().Uint("challengeTestID", challenge.ID).Msg("reconcile: challenge already finished, skipping")
		return nil
	}

	challenge.Type = model.ChallengeFinished
	challenge.StudentScore = outcome.studentScore
	challenge.CompetitorScore = outcome.competitorScore

	s.leaderboard.Invalidate()
	s.notifyOutcome(challenge, outcome)
	return nil
}

// appendHistory writes one leaderboard row per present participant,
// stamped with the challenge's own timestamps so ranking chronology
// follows when the challenge happened, not when it was swept.
func (s *challengeTestService) appendHistory(tx *gorm.DB, challenge *model.ChallengeTest, outcome challengeOutcome) error {
	if challenge.Student.ID != 0 {
		history := model.ChallengeTestHistory{
			StudentID: challenge.Student.ID,
			Score:     outcome.studentScore,
			FullName:  challenge.Student.FullName(),
			Country:   challenge.Student.Country,
			CreatedAt: challenge.CreatedAt,
			UpdatedAt: challenge.UpdatedAt,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("creating student history: %w", err)
		}
	}

	if challenge.Competitor != nil {
		history := model.ChallengeTestHistory{
			StudentID: challenge.Competitor.ID,
			Score:     outcome.competitorScore,
			FullName:  challenge.Competitor.FullName(),
			Country:   challenge.Competitor.Country,
			CreatedAt: challenge.CreatedAt,
			UpdatedAt: challenge.UpdatedAt,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("creating competitor history: %w", err)
		}
	}
	return nil
}

// rankScores converts the two raw percentage scores into ranking points:
// a tie pays 2/2, the winner takes 3 and the loser salvages 1 only above
// the consolation floor. Applied only when both attempts exist.
func rankScores(studentAttempt, competitorAttempt *model.AssignTest) challengeOutcome {
	if studentAttempt == nil || competitorAttempt == nil {
		return challengeOutcome{}
	}

	outcome := challengeOutcome{bothSides: true}
	switch {
	case studentAttempt.Score == competitorAttempt.Score:
		outcome.studentScore = 2
		outcome.competitorScore = 2
		outcome.rawTie = true
	case studentAttempt.Score > competitorAttempt.Score:
		outcome.studentScore = 3
		if competitorAttempt.Score > loserConsolationFloor {
			outcome.competitorScore = 1
		}
	default:
		outcome.competitorScore = 3
		if studentAttempt.Score > loserConsolationFloor {
			outcome.studentScore = 1
		}
	}
	return outcome
}

// notifyOutcome queues the won/lost or tie notification pair. Failures
// are logged only; the reconciliation is already committed.
func (s *challengeTestService) notifyOutcome(challenge *model.ChallengeTest, outcome challengeOutcome) {
	if !outcome.bothSides || challenge.Competitor == nil {
		log.Warn().Uint("challengeTestID", challenge.ID).Msg("notifyOutcome: missing participant, nothing to announce")
		return
	}

	scoreBoardURL := s.cfg.Hosts.Web + "/dashboard/ranking"
	student := challenge.Student
	competitor := *challenge.Competitor

	send := func(template, subject string, to model.User) {
		job := NotificationJob{
			Template: template,
			ToEmail:  to.Email,
			Subject:  subject,
			Variables: map[string]string{
				"student":         to.FullName(),
				"score_board_url": scoreBoardURL,
			},
		}
		if err := s.notifier.Send(job); err != nil {
			log.Error().Err(err).Uint("challengeTestID", challenge.ID).Str("template", template).Msg("notifyOutcome: failed to queue notification")
		}
	}

	switch {
	case outcome.rawTie:
		send(TemplateChallengeEqual, "It's a tie!", student)
		send(TemplateChallengeEqual, "It's a tie!", competitor)
	case outcome.studentScore > outcome.competitorScore:
		send(TemplateChallengeWon, "You WON the challenge!", student)
		send(TemplateChallengeLost, "You lost the challenge!", competitor)
	case outcome.competitorScore > outcome.studentScore:
		send(TemplateChallengeWon, "You WON the challenge!", competitor)
		send(TemplateChallengeLost, "You lost the challenge!", student)
	default:
		// Equal ranking points without a raw tie cannot happen with the
		// current table; if it ever does there is nothing to announce.
		log.Warn().Uint("challengeTestID", challenge.ID).Msg("notifyOutcome: equal ranking points without raw tie, skipping")
	}
}

func newChallengeAssign(testID, studentID, challengeTestID uint, status model.AssignStatus, now time.Time) model.AssignTest {
	challengeID := challengeTestID
	return model.AssignTest{
		TestID:          testID,
		StudentID:       studentID,
		ChallengeTestID: &challengeID,
		Deadline:        now,
		TimeLimit:       challengeTimeLimit,
		Expectation:     challengeExpectation,
		Status:          status,
		Origin:          model.AssignOriginChallenge,
	}
}

func applyPlayers(result *dto.FinishTestResultDTO, challenge *model.ChallengeTest) {
	players := challenge.Players()
	result.WinnerName = players.WinnerName
	result.LoserName = players.LoserName
	result.Players = players.Players
}
