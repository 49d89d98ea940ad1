package services

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"resq-http-service/config"
	"resq-http-service/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 为每个测试创建独立的内存数据库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Admin{},
		&models.Organization{},
		&models.Division{},
		&models.Staff{},
		&models.EmergencyTicket{},
		&models.TicketUpdate{},
		&models.Shelter{},
		&models.Hospital{},
		&models.ResourceCenter{},
	)
	require.NoError(t, err)

	return db
}

// newTestConfig 返回调度参数固定的测试配置
func newTestConfig() *config.Config {
	return &config.Config{
		AcceptanceWindowSeconds: 300,
		SchedulerPollSeconds:    1,
		EscalationThreshold:     3,
		DefaultLatitude:         19.0760,
		DefaultLongitude:        72.8750,
		JWTSecretKey:            "test-secret",
	}
}

// fakeClock 可手动拨动的时钟
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
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

// recordingScheduler 记录入队调用的假调度器
type recordingScheduler struct {
	mu        sync.Mutex
	scheduled []scheduledCheck
	handler   func(ticketID uint, epoch int)
}

type scheduledCheck struct {
	TicketID uint
	Epoch    int
	FireAt   time.Time
}

func (s *recordingScheduler) ScheduleAcceptanceCheck(ticketID uint, epoch int, fireAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled = append(s.scheduled, scheduledCheck{TicketID: ticketID, Epoch: epoch, FireAt: fireAt})
	return nil
}

func (s *recordingScheduler) SetTimeoutHandler(handler func(ticketID uint, epoch int)) {
	s.handler = handler
}

func (s *recordingScheduler) Start() {}
func (s *recordingScheduler) Stop()  {}

func (s *recordingScheduler) calls() []scheduledCheck {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]scheduledCheck, len(s.scheduled))
	copy(out, s.scheduled)
	return out
}

// recordingNotifier 记录通知调用的假通知器
type recordingNotifier struct {
	mu          sync.Mutex
	proposals   []uint
	escalations []uint
}

func (n *recordingNotifier) NotifyProposal(ticket *models.EmergencyTicket, org *models.Organization, deadline time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.proposals = append(n.proposals, ticket.ID)
}

func (n *recordingNotifier) NotifyEscalation(ticket *models.EmergencyTicket) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.escalations = append(n.escalations, ticket.ID)
}

// seedOrganization 创建一个有容量的活跃机构
func seedOrganization(t *testing.T, db *gorm.DB, name string, lat, lon float64, capacity int, category string) *models.Organization {
	t.Helper()
	org := &models.Organization{
		Name:      name,
		Category:  category,
		Capacity:  capacity,
		Latitude:  &lat,
		Longitude: &lon,
		Status:    "Active",
	}
	require.NoError(t, db.Create(org).Error)
	return org
}

// seedStaff 创建一个可派遣的人员
func seedStaff(t *testing.T, db *gorm.DB, orgID uint, name string, lat, lon float64, skills string) *models.Staff {
	t.Helper()
	staff := &models.Staff{
		Name:           name,
		OrganizationID: orgID,
		Role:           "Worker",
		Skills:         skills,
		Availability:   models.StaffAvailable,
		Latitude:       &lat,
		Longitude:      &lon,
		Status:         "Active",
	}
	require.NoError(t, db.Create(staff).Error)
	return staff
}

var ticketSeq uint64

// seedTicket 创建一个 Pending 状态的工单
func seedTicket(t *testing.T, db *gorm.DB, category string, people int, lat, lon float64) *models.EmergencyTicket {
	t.Helper()
	ticket := &models.EmergencyTicket{
		ExternalID: fmt.Sprintf("test-%d", atomic.AddUint64(&ticketSeq, 1)),
		People:     people,
		Latitude:   lat,
		Longitude:  lon,
		Category:   category,
		Priority:   models.ClassifyPriority(category, people),
		Status:     models.TicketStatusPending,
	}
	require.NoError(t, db.Create(ticket).Error)
	return ticket
}
