package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"resq-http-service/config"

	"github.com/go-redis/redis/v8"
)

// 接受窗口定时器的 Redis 有序集合键，score 为触发时刻的 Unix 秒
const acceptanceQueueKey = "resq:assignment:acceptance_queue"

// InterfaceSchedulerService defines the durable delay queue interface
type InterfaceSchedulerService interface {
	ScheduleAcceptanceCheck(ticketID uint, epoch int, fireAt time.Time) error
	SetTimeoutHandler(handler func(ticketID uint, epoch int))
	Start()
	Stop()
}

// SchedulerService 基于 Redis ZSET 的持久化延迟队列。
// 定时器落在 Redis 里，进程重启后继续生效；到期项由轮询循环
// 原子弹出后交给回调处理。
type SchedulerService struct {
	Redis  *redis.Client
	Config *config.Config
	Clock  Clock

	mu      sync.RWMutex
	handler func(ticketID uint, epoch int)

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewSchedulerService 创建一个新的调度服务
func NewSchedulerService(redisClient *redis.Client, cfg *config.Config, clock Clock) InterfaceSchedulerService {
	return &SchedulerService{
		Redis:  redisClient,
		Config: cfg,
		Clock:  clock,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// SetTimeoutHandler 注册到期回调。分配服务和调度服务互相依赖，
// 先构造再注册，避免构造环。
func (s *SchedulerService) SetTimeoutHandler(handler func(ticketID uint, epoch int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
}

// ScheduleAcceptanceCheck 将一期提议的接受窗口定时器写入延迟队列。
// 成员格式 "ticketID:epoch"，同一工单的新提议不覆盖旧定时器，
// 过期定时器触发时由 epoch 比对丢弃。
func (s *SchedulerService) ScheduleAcceptanceCheck(ticketID uint, epoch int, fireAt time.Time) error {
	ctx := context.Background()
	member := fmt.Sprintf("%d:%d", ticketID, epoch)
	err := s.Redis.ZAdd(ctx, acceptanceQueueKey, &redis.Z{
		Score:  float64(fireAt.Unix()),
		Member: member,
	}).Err()
	if err != nil {
		return fmt.Errorf("%w: schedule acceptance check: %v", ErrStorage, err)
	}
	config.Info("工单 %d 第 %d 期接受窗口定时器入队，触发时刻 %s", ticketID, epoch, fireAt.Format(time.RFC3339))
	return nil
}

// Start 启动轮询循环
func (s *SchedulerService) Start() {
	go s.run()
}

// Stop 停止轮询循环并等待退出
func (s *SchedulerService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	<-s.doneCh
}

func (s *SchedulerService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Config.SchedulerPollInterval())
	defer ticker.Stop()

	config.Info("接受窗口调度器启动，轮询间隔 %s", s.Config.SchedulerPollInterval())
	for {
		select {
		case <-s.stopCh:
			config.Info("接受窗口调度器停止")
			return
		case <-ticker.C:
			s.Poll()
		}
	}
}

// Poll 弹出所有已到期的定时器并触发回调。
// 轮询循环定时调用，测试里也可以直接驱动。
func (s *SchedulerService) Poll() {
	ctx := context.Background()
	now := s.Clock.Now().Unix()

	for {
		member, ok := s.popDue(ctx, now)
		if !ok {
			return
		}

		ticketID, epoch, err := parseQueueMember(member)
		if err != nil {
			config.Warning("延迟队列出现无法解析的成员 %q，丢弃", member)
			continue
		}

		s.mu.RLock()
		handler := s.handler
		s.mu.RUnlock()
		if handler == nil {
			config.Warning("定时器触发但未注册回调，工单 %d 第 %d 期丢弃", ticketID, epoch)
			continue
		}
		handler(ticketID, epoch)
	}
}

// popDue 原子弹出一个到期成员，避免多实例重复消费
func (s *SchedulerService) popDue(ctx context.Context, now int64) (string, bool) {
	results, err := s.Redis.ZRangeByScoreWithScores(ctx, acceptanceQueueKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now, 10),
		Count: 1,
	}).Result()
	if err != nil {
		config.Error("延迟队列查询失败: %v", err)
		return "", false
	}
	if len(results) == 0 {
		return "", false
	}

	member, _ := results[0].Member.(string)
	removed, err := s.Redis.ZRem(ctx, acceptanceQueueKey, member).Result()
	if err != nil {
		config.Error("延迟队列移除成员失败: %v", err)
		return "", false
	}
	if removed == 0 {
		// 被其他实例抢先消费
		return "", false
	}
	return member, true
}

func parseQueueMember(member string) (uint, int, error) {
	parts := strings.SplitN(member, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed queue member %q", member)
	}
	ticketID, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	epoch, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return uint(ticketID), epoch, nil
}
