package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ArturTovmasyan/ministry-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	leaderboardCacheKey = "ministry:leaderboard"
	leaderboardCacheTTL = 5 * time.Minute
	// leaderboardMaxSize caps both the query and the cached slice.
	leaderboardMaxSize = 1000
)

// LeaderboardService serves the challenge ranking, cached in redis when a
// client is configured. Invalidate is called after every reconciliation.
type LeaderboardService interface {
	Ranking(limit int) ([]repository.RankingRow, error)
	Invalidate()
}

type leaderboardService struct {
	historyRepo repository.ChallengeTestHistoryRepository
	redis       *redis.Client
}

// NewLeaderboardService accepts a nil redis client, in which case every
// call goes straight to the database.
func NewLeaderboardService(historyRepo repository.ChallengeTestHistoryRepository, redisClient *redis.Client) LeaderboardService {
	return &leaderboardService{historyRepo: historyRepo, redis: redisClient}
}

func (s *leaderboardService) Ranking(limit int) ([]repository.RankingRow, error) {
	if limit <= 0 || limit > leaderboardMaxSize {
		limit = leaderboardMaxSize
	}

	if cached, ok := s.fromCache(); ok {
		if len(cached) > limit {
			cached = cached[:limit]
		}
		return cached, nil
	}

	rows, err := s.historyRepo.Ranking(leaderboardMaxSize)
	if err != nil {
		return nil, err
	}
	s.toCache(rows)

	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *leaderboardService) Invalidate() {
	if s.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.redis.Del(ctx, leaderboardCacheKey).Err(); err != nil {
		log.Error().Err(err).Msg("Invalidate: failed to drop leaderboard cache")
	}
}

func (s *leaderboardService) fromCache() ([]repository.RankingRow, bool) {
	if s.redis == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payload, err := s.redis.Get(ctx, leaderboardCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Error().Err(err).Msg("fromCache: leaderboard cache read failed")
		}
		return nil, false
	}

	var rows []repository.RankingRow
	if err := json.Unmarshal(payload, &rows); err != nil {
		log.Error().Err(err).Msg("fromCache: dropping malformed leaderboard cache entry")
		return nil, false
	}
	return rows, true
}

func (s *leaderboardService) toCache(rows []repository.RankingRow) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		log.Error().Err(err).Msg("toCache: failed to encode leaderboard")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.redis.Set(ctx, leaderboardCacheKey, payload, leaderboardCacheTTL).Err(); err != nil {
		log.Error().Err(err).Msg("toCache: leaderboard cache write failed")
	}
}
