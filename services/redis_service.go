package services

import (
	"context"
	"encoding/json"
	"time"

	"resq-http-service/config"

	"github.com/go-redis/redis/v8"
)

// RedisService handles Redis operations
type RedisService struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRedisService creates a new Redis service
func NewRedisService(cfg *config.Config) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()

	return &RedisService{
		Client: client,
		Ctx:    ctx,
	}
}

// Set sets a key-value pair in Redis with expiration
func (s *RedisService) Set(key string, value interface{}, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return s.Client.Set(s.Ctx, key, jsonValue, expiration).Err()
}

// Get gets a value from Redis by key
func (s *RedisService) Get(key string, dest interface{}) error {
	val, err := s.Client.Get(s.Ctx, key).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(val), dest)
}

// Delete deletes a key from Redis
func (s *RedisService) Delete(key string) error {
	return s.Client.Del(s.Ctx, key).Err()
}

// CacheDashboardStats caches dashboard statistics with expiration
func (s *RedisService) CacheDashboardStats(scope string, stats interface{}, expiration time.Duration) error {
	return s.Set("dashboard:stats:"+scope, stats, expiration)
}

// GetDashboardStats gets dashboard statistics from cache
func (s *RedisService) GetDashboardStats(scope string, dest interface{}) error {
	return s.Get("dashboard:stats:"+scope, dest)
}

// CacheFloodData caches satellite flood data with expiration
func (s *RedisService) CacheFloodData(region string, data interface{}, expiration time.Duration) error {
	return s.Set("flood:"+region, data, expiration)
}

// GetFloodData gets satellite flood data from cache
func (s *RedisService) GetFloodData(region string, dest interface{}) error {
	return s.Get("flood:"+region, dest)
}
