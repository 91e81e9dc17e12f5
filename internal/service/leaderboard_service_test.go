package service

import (
	"testing"
	"time"

	"github.com/ArturTovmasyan/ministry-backend/internal/model"
	"github.com/ArturTovmasyan/ministry-backend/internal/repository"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func seedHistory(t *testing.T, db *gorm.DB, studentID uint, fullName string, scores ...int) {
	t.Helper()
	for _, score := range scores {
		row := model.ChallengeTestHistory{
			StudentID: studentID,
			Score:     score,
			FullName:  fullName,
			Country:   "US",
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("seeding history for %s: %v", fullName, err)
		}
	}
}

func newRedisForTest(t *testing.T) *redis.Client {
	t.Helper()
	mini := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mini.Addr()})
}

func TestRankingAggregatesAndOrders(t *testing.T) {
	db := newTestDB(t)
	service := NewLeaderboardService(repository.NewChallengeTestHistoryRepository(db), nil)

	seedHistory(t, db, 1, "Ann Low", 3, 2, 3)
	seedHistory(t, db, 2, "Bob Mid", 2, 1)
	seedHistory(t, db, 3, "Cyd Nix", 3, 3, 3)

	rows, err := service.Ranking(0)
	if err != nil {
		t.Fatalf("loading ranking: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("ranking rows = %d, want 3", len(rows))
	}
	if rows[0].StudentID != 3 || rows[0].Score != 9 {
		t.Fatalf("top row = %+v, want student 3 with 9", rows[0])
	}
	if rows[1].StudentID != 1 || rows[1].Score != 8 {
		t.Fatalf("second row = %+v, want student 1 with 8", rows[1])
	}

	limited, err := service.Ranking(1)
	if err != nil {
		t.Fatalf("loading limited ranking: %v", err)
	}
	if len(limited) != 1 || limited[0].StudentID != 3 {
		t.Fatalf("limited ranking = %+v, want only student 3", limited)
	}
}

func TestRankingCaching(t *testing.T) {
	db := newTestDB(t)
	client := newRedisForTest(t)
	service := NewLeaderboardService(repository.NewChallengeTestHistoryRepository(db), client)

	seedHistory(t, db, 1, "Ann Low", 3)

	rows, err := service.Ranking(0)
	if err != nil || len(rows) != 1 {
		t.Fatalf("first ranking = %v, %v", rows, err)
	}

	// New rows are invisible until the cache is invalidated.
	seedHistory(t, db, 2, "Bob Mid", 3)
	rows, err = service.Ranking(0)
	if err != nil {
		t.Fatalf("cached ranking: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("cached ranking rows = %d, want stale 1", len(rows))
	}

	service.Invalidate()
	rows, err = service.Ranking(0)
	if err != nil {
		t.Fatalf("ranking after invalidate: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ranking rows after invalidate = %d, want 2", len(rows))
	}
}

func TestRankingWithoutRedis(t *testing.T) {
	db := newTestDB(t)
	service := NewLeaderboardService(repository.NewChallengeTestHistoryRepository(db), nil)

	seedHistory(t, db, 1, "Ann Low", 2)
	service.Invalidate()

	rows, err := service.Ranking(0)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ranking without redis = %v, %v", rows, err)
	}
}
