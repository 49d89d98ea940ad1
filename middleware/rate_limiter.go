package middleware

import (
	"fmt"
	"net/http"
	"time"

	"resq-http-service/config"
	"resq-http-service/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

var redisService *services.RedisService

// InitRateLimiter 初始化限流中间件
func InitRateLimiter(rs *services.RedisService) {
	redisService = rs
}

// RateLimiterConfig 限流器配置
type RateLimiterConfig struct {
	Limit     int64                     // 窗口内允许的请求数
	Window    time.Duration             // 滑动窗口长度
	LimitType string                    // 限流类型: "ip", "path", "combined"
	KeyFunc   func(*gin.Context) string // 自定义键生成函数
}

// DefaultRateLimiterConfig 默认限流器配置
var DefaultRateLimiterConfig = RateLimiterConfig{
	Limit:     60,
	Window:    time.Minute,
	LimitType: "ip",
	KeyFunc:   nil,
}

// allow 基于Redis有序集合的滑动窗口判定
func allow(key string, cfg RateLimiterConfig) bool {
	if redisService == nil {
		return true
	}

	now := time.Now()
	windowStart := now.Add(-cfg.Window)
	redisKey := "resq:ratelimit:" + key

	pipe := redisService.Client.TxPipeline()
	pipe.ZRemRangeByScore(redisService.Ctx, redisKey, "0",
		fmt.Sprintf("%d", windowStart.UnixNano()))
	pipe.ZAdd(redisService.Ctx, redisKey, &redis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	})
	countCmd := pipe.ZCard(redisService.Ctx, redisKey)
	pipe.Expire(redisService.Ctx, redisKey, cfg.Window)
	if _, err := pipe.Exec(redisService.Ctx); err != nil {
		// Redis不可用时放行，限流只是保护措施
		config.Warning("限流器Redis异常: %v", err)
		return true
	}

	return countCmd.Val() <= cfg.Limit
}

// RateLimiter 创建限流中间件
func RateLimiter(config ...RateLimiterConfig) gin.HandlerFunc {
	// 使用默认配置或自定义配置
	var cfg RateLimiterConfig
	if len(config) > 0 {
		cfg = config[0]
	} else {
		cfg = DefaultRateLimiterConfig
	}

	// 确保配置有效
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultRateLimiterConfig.Limit
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultRateLimiterConfig.Window
	}
	if cfg.LimitType == "" {
		cfg.LimitType = DefaultRateLimiterConfig.LimitType
	}

	return func(c *gin.Context) {
		var key string

		// 根据限流类型选择限流键
		switch cfg.LimitType {
		case "ip":
			key = c.ClientIP()
		case "path":
			key = c.Request.URL.Path
		case "combined":
			key = c.ClientIP() + ":" + c.Request.URL.Path
		default:
			if cfg.KeyFunc != nil {
				key = cfg.KeyFunc(c)
			} else {
				key = c.ClientIP()
			}
		}

		if !allow(key, cfg) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": "请求频率过高，请稍后再试",
				"data":    nil,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// IPRateLimiter 按IP限流
func IPRateLimiter(limit int64, window time.Duration) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{
		Limit:     limit,
		Window:    window,
		LimitType: "ip",
	})
}

// CombinedRateLimiter 按IP和路径组合限流
func CombinedRateLimiter(limit int64, window time.Duration) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{
		Limit:     limit,
		Window:    window,
		LimitType: "combined",
	})
}
