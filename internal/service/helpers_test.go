package service

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ArturTovmasyan/ministry-backend/config"
	"github.com/ArturTovmasyan/ministry-backend/internal/model"
	"github.com/ArturTovmasyan/ministry-backend/internal/repository"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	// A pooled second connection would see an empty in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("getting sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&model.User{},
		&model.Test{},
		&model.Question{},
		&model.Answer{},
		&model.AssignTest{},
		&model.PassedQuestion{},
		&model.ChallengeTest{},
		&model.ChallengeTestHistory{},
		&model.Subscription{},
		&model.EventLog{},
	)
	if err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

// fakeClock is a manually advanced clock seeded near real time so that
// gorm-populated CreatedAt columns stay comparable with it.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// captureNotifier records every job instead of delivering it.
type captureNotifier struct {
	mu   sync.Mutex
	jobs []NotificationJob
}

func (n *captureNotifier) Send(job NotificationJob) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.jobs = append(n.jobs, job)
	return nil
}

func (n *captureNotifier) byTemplate(template string) []NotificationJob {
	n.mu.Lock()
	defer n.mu.Unlock()
	var matched []NotificationJob
	for _, job := range n.jobs {
		if job.Template == template {
			matched = append(matched, job)
		}
	}
	return matched
}

func seedUser(t *testing.T, db *gorm.DB, first, last, country string) *model.User {
	t.Helper()
	user := model.User{
		FirstName: first,
		LastName:  last,
		Email:     fmt.Sprintf("%s.%s@example.com", first, last),
		Country:   country,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seeding user %s %s: %v", first, last, err)
	}
	return &user
}

// seedTest creates a test with the requested number of questions, each
// holding two answers with the first one correct.
func seedTest(t *testing.T, db *gorm.DB, name string, questions int) *model.Test {
	t.Helper()
	test := model.Test{Name: name}
	for i := 0; i < questions; i++ {
		test.Questions = append(test.Questions, model.Question{
			Title: fmt.Sprintf("Question %d", i+1),
			Answers: []model.Answer{
				{Title: "Right", Correct: true},
				{Title: "Wrong"},
			},
		})
	}
	if err := db.Create(&test).Error; err != nil {
		t.Fatalf("seeding test %s: %v", name, err)
	}
	return &test
}

// challengeEnv bundles everything a challenge lifecycle test needs.
type challengeEnv struct {
	db        *gorm.DB
	clock     *fakeClock
	notifier  *captureNotifier
	cfg       *config.Config
	service   ChallengeTestService
	scores    ScoreService
	challenge repository.ChallengeTestRepository
	assigns   repository.AssignTestRepository
	history   repository.ChallengeTestHistoryRepository
}

func newChallengeEnv(t *testing.T) *challengeEnv {
	t.Helper()

	db := newTestDB(t)
	clock := newFakeClock()
	notifier := &captureNotifier{}
	cfg := &config.Config{}
	cfg.Hosts.Web = "http://web.test"
	cfg.Hosts.Backend = "http://api.test"

	challengeRepo := repository.NewChallengeTestRepository(db)
	assignRepo := repository.NewAssignTestRepository(db)
	testRepo := repository.NewTestRepository(db)
	userRepo := repository.NewUserRepository(db)
	historyRepo := repository.NewChallengeTestHistoryRepository(db)
	leaderboard := NewLeaderboardService(historyRepo, nil)

	return &challengeEnv{
		db:        db,
		clock:     clock,
		notifier:  notifier,
		cfg:       cfg,
		service:   NewChallengeTestService(challengeRepo, assignRepo, testRepo, userRepo, leaderboard, notifier, clock, cfg, db),
		scores:    NewScoreService(assignRepo, testRepo, repository.NewAnswerRepository(db), repository.NewPassedQuestionRepository(db), db),
		challenge: challengeRepo,
		assigns:   assignRepo,
		history:   historyRepo,
	}
}

// assignIDs returns the initiator's and the competitor's attempt ids for a
// challenge.
func (e *challengeEnv) assignIDs(t *testing.T, challengeTestID uint) (studentAssignID, competitorAssignID uint) {
	t.Helper()
	challenge, err := e.challenge.FindByIDWithParticipants(challengeTestID)
	if err != nil || challenge == nil {
		t.Fatalf("loading challenge %d: %v", challengeTestID, err)
	}
	for _, assign := range challenge.AssignTests {
		if assign.IsCompetitorAttempt(challenge.CompetitorID) {
			competitorAssignID = assign.ID
		} else {
			studentAssignID = assign.ID
		}
	}
	if studentAssignID == 0 || competitorAssignID == 0 {
		t.Fatalf("challenge %d is missing attempts", challengeTestID)
	}
	return studentAssignID, competitorAssignID
}

func (e *challengeEnv) setAssignScore(t *testing.T, assignID uint, score int) {
	t.Helper()
	err := e.db.Model(&model.AssignTest{}).Where("id = ?", assignID).Update("score", score).Error
	if err != nil {
		t.Fatalf("setting score on assign %d: %v", assignID, err)
	}
}

func (e *challengeEnv) confirmToken(t *testing.T, challengeTestID uint) string {
	t.Helper()
	var challenge model.ChallengeTest
	if err := e.db.First(&challenge, challengeTestID).Error; err != nil {
		t.Fatalf("loading challenge %d: %v", challengeTestID, err)
	}
	return challenge.ConfirmToken
}
