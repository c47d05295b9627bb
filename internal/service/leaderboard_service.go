package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/verdantlab/ecoquest-api/internal/dto"
	"github.com/verdantlab/ecoquest-api/internal/repository"
)

const leaderboardDefaultLimit = 50

// LeaderboardService computes ranked school and student standings.
type LeaderboardService interface {
	Schools(ctx context.Context, limit int) ([]dto.SchoolRankEntry, error)
	Students(ctx context.Context, query dto.LeaderboardQuery) ([]dto.StudentRankEntry, error)
}

type leaderboardService struct {
	repo      repository.LeaderboardRepository
	redis     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewLeaderboardService constructs a LeaderboardService instance. Redis is
// optional; without it every request recomputes from the database.
func NewLeaderboardService(repo repository.LeaderboardRepository, redisClient *redis.Client, cacheTTL time.Duration, validate *validator.Validate, logger zerolog.Logger) LeaderboardService {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	return &leaderboardService{
		repo:      repo,
		redis:     redisClient,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger.With().Str("component", "leaderboard_service").Logger(),
	}
}

func (s *leaderboardService) Schools(ctx context.Context, limit int) ([]dto.SchoolRankEntry, error) {
	if limit <= 0 {
		limit = leaderboardDefaultLimit
	}

	cacheKey := fmt.Sprintf("ecoquest:leaderboard:schools:%d", limit)
	var cached []dto.SchoolRankEntry
	if s.fromCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	totals, err := s.repo.SchoolTotals(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.SchoolRankEntry, 0, len(totals))
	for i, total := range totals {
		entries = append(entries, dto.SchoolRankEntry{
			Rank:     i + 1,
			SchoolID: total.SchoolID,
			Name:     total.Name,
			Points:   total.Points,
			Location: formatLocation(total.City, total.State),
		})
	}

	s.toCache(ctx, cacheKey, entries)

	return entries, nil
}

func (s *leaderboardService) Students(ctx context.Context, query dto.LeaderboardQuery) ([]dto.StudentRankEntry, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}

	limit := query.Limit
	if limit <= 0 {
		limit = leaderboardDefaultLimit
	}

	cacheKey := fmt.Sprintf("ecoquest:leaderboard:students:%s:%s:%d", uintCacheKey(query.SchoolID), query.ClassName, limit)
	var cached []dto.StudentRankEntry
	if s.fromCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	users, err := s.repo.StudentRanking(ctx, repository.StudentRankFilter{
		SchoolID:  query.SchoolID,
		ClassName: query.ClassName,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}

	entries := make([]dto.StudentRankEntry, 0, len(users))
	for i, user := range users {
		entry := dto.StudentRankEntry{
			Rank:      i + 1,
			UserID:    user.ID,
			Name:      user.Name,
			Points:    user.Points,
			ClassName: user.ClassName,
		}
		if user.School != nil {
			entry.SchoolName = user.School.Name
		}
		entries = append(entries, entry)
	}

	s.toCache(ctx, cacheKey, entries)

	return entries, nil
}

func (s *leaderboardService) fromCache(ctx context.Context, key string, target interface{}) bool {
	if s.redis == nil {
		return false
	}

	result, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}

	if err := json.Unmarshal([]byte(result), target); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to unmarshal cached leaderboard")
		return false
	}

	return true
}

func (s *leaderboardService) toCache(ctx context.Context, key string, value interface{}) {
	if s.redis == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to marshal leaderboard for cache")
		return
	}

	if err := s.redis.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to cache leaderboard")
	}
}

func formatLocation(city, state string) string {
	switch {
	case city != "" && state != "":
		return fmt.Sprintf("%s, %s", city, state)
	case city != "":
		return city
	default:
		return state
	}
}

func uintCacheKey(value *uint) string {
	if value == nil {
		return "all"
	}

	return fmt.Sprintf("%d", *value)
}
