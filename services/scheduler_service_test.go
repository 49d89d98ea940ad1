package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type firedCheck struct {
	TicketID uint
	Epoch    int
}

func newTestScheduler(t *testing.T) (*SchedulerService, *miniredis.Miniredis, *fakeClock) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	clock := newFakeClock(time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC))
	scheduler := NewSchedulerService(client, newTestConfig(), clock).(*SchedulerService)
	return scheduler, mr, clock
}

func collectFired(scheduler *SchedulerService) *[]firedCheck {
	var mu sync.Mutex
	fired := &[]firedCheck{}
	scheduler.SetTimeoutHandler(func(ticketID uint, epoch int) {
		mu.Lock()
		defer mu.Unlock()
		*fired = append(*fired, firedCheck{TicketID: ticketID, Epoch: epoch})
	})
	return fired
}

func TestSchedulerPersistsTimerInRedis(t *testing.T) {
	scheduler, mr, clock := newTestScheduler(t)

	fireAt := clock.Now().Add(300 * time.Second)
	require.NoError(t, scheduler.ScheduleAcceptanceCheck(42, 1, fireAt))

	// 定时器落在Redis里，进程重启后仍然存在
	members, err := mr.ZMembers(acceptanceQueueKey)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "42:1", members[0])

	score, err := mr.ZScore(acceptanceQueueKey, "42:1")
	require.NoError(t, err)
	assert.Equal(t, float64(fireAt.Unix()), score)
}

func TestSchedulerPollFiresDueTimers(t *testing.T) {
	scheduler, _, clock := newTestScheduler(t)
	fired := collectFired(scheduler)

	require.NoError(t, scheduler.ScheduleAcceptanceCheck(42, 1, clock.Now().Add(300*time.Second)))

	// 未到期不触发
	scheduler.Poll()
	assert.Empty(t, *fired)

	clock.Advance(301 * time.Second)
	scheduler.Poll()
	require.Len(t, *fired, 1)
	assert.Equal(t, firedCheck{TicketID: 42, Epoch: 1}, (*fired)[0])

	// 触发后出队，不重复触发
	scheduler.Poll()
	assert.Len(t, *fired, 1)
}

func TestSchedulerPollFiresAllDueTimers(t *testing.T) {
	scheduler, _, clock := newTestScheduler(t)
	fired := collectFired(scheduler)

	require.NoError(t, scheduler.ScheduleAcceptanceCheck(1, 1, clock.Now().Add(10*time.Second)))
	require.NoError(t, scheduler.ScheduleAcceptanceCheck(2, 1, clock.Now().Add(20*time.Second)))
	require.NoError(t, scheduler.ScheduleAcceptanceCheck(3, 1, clock.Now().Add(10*time.Minute)))

	clock.Advance(time.Minute)
	scheduler.Poll()

	// 到期的两个触发，未到期的留在队列里
	require.Len(t, *fired, 2)
	assert.Equal(t, firedCheck{TicketID: 1, Epoch: 1}, (*fired)[0])
	assert.Equal(t, firedCheck{TicketID: 2, Epoch: 1}, (*fired)[1])
}

func TestSchedulerKeepsStaleEpochMembersSeparate(t *testing.T) {
	scheduler, mr, clock := newTestScheduler(t)
	fired := collectFired(scheduler)

	// 同一工单的两期提议是两个独立成员
	require.NoError(t, scheduler.ScheduleAcceptanceCheck(42, 1, clock.Now().Add(10*time.Second)))
	require.NoError(t, scheduler.ScheduleAcceptanceCheck(42, 2, clock.Now().Add(20*time.Second)))

	members, err := mr.ZMembers(acceptanceQueueKey)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	clock.Advance(time.Minute)
	scheduler.Poll()

	// 两期都会触发，过期的那期由回调里的epoch比对丢弃
	require.Len(t, *fired, 2)
	assert.Equal(t, 1, (*fired)[0].Epoch)
	assert.Equal(t, 2, (*fired)[1].Epoch)
}

func TestSchedulerDiscardsMalformedMembers(t *testing.T) {
	scheduler, mr, clock := newTestScheduler(t)
	fired := collectFired(scheduler)

	mr.ZAdd(acceptanceQueueKey, float64(clock.Now().Unix()-10), "garbage")
	require.NoError(t, scheduler.ScheduleAcceptanceCheck(42, 1, clock.Now().Add(-5*time.Second)))

	scheduler.Poll()

	// 垃圾成员被丢弃，正常成员照常触发
	require.Len(t, *fired, 1)
	assert.Equal(t, uint(42), (*fired)[0].TicketID)

	exists := mr.Exists(acceptanceQueueKey)
	assert.False(t, exists)
}

func TestSchedulerWithoutHandlerDropsTimer(t *testing.T) {
	scheduler, mr, clock := newTestScheduler(t)

	require.NoError(t, scheduler.ScheduleAcceptanceCheck(42, 1, clock.Now().Add(-time.Second)))
	scheduler.Poll()

	// 无回调时成员仍被消费，不会死循环
	assert.False(t, mr.Exists(acceptanceQueueKey))
}

func TestSchedulerStartStop(t *testing.T) {
	scheduler, _, _ := newTestScheduler(t)
	scheduler.SetTimeoutHandler(func(uint, int) {})

	scheduler.Start()
	time.Sleep(10 * time.Millisecond)
	scheduler.Stop()
}

func TestParseQueueMember(t *testing.T) {
	id, epoch, err := parseQueueMember("42:7")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, 7, epoch)

	_, _, err = parseQueueMember("garbage")
	assert.Error(t, err)

	_, _, err = parseQueueMember("a:b")
	assert.Error(t, err)
}

func TestSchedulerAtomicPop(t *testing.T) {
	scheduler, _, clock := newTestScheduler(t)

	require.NoError(t, scheduler.ScheduleAcceptanceCheck(42, 1, clock.Now().Add(-time.Second)))

	member, ok := scheduler.popDue(context.Background(), clock.Now().Unix())
	require.True(t, ok)
	assert.Equal(t, "42:1", member)

	// 第二次弹出同一成员失败
	_, ok = scheduler.popDue(context.Background(), clock.Now().Unix())
	assert.False(t, ok)
}
