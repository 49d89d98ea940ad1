package services

import (
	"testing"
	"time"

	"resq-http-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type assignmentFixture struct {
	db        *gorm.DB
	clock     *fakeClock
	scheduler *recordingScheduler
	notifier  *recordingNotifier
	history   InterfaceHistoryService
	service   InterfaceAssignmentService
}

func newAssignmentFixture(t *testing.T) *assignmentFixture {
	t.Helper()

	db := newTestDB(t)
	cfg := newTestConfig()
	clock := newFakeClock(time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC))
	scheduler := &recordingScheduler{}
	notifier := &recordingNotifier{}
	geo := NewGeoService()
	scoring := NewScoringService(geo, cfg)
	history := NewHistoryService(db, cfg, clock)

	service := NewAssignmentService(db, cfg, scoring, history, scheduler, notifier, clock)
	scheduler.SetTimeoutHandler(service.HandleAcceptanceTimeout)

	return &assignmentFixture{
		db:        db,
		clock:     clock,
		scheduler: scheduler,
		notifier:  notifier,
		history:   history,
		service:   service,
	}
}

func (f *assignmentFixture) reloadTicket(t *testing.T, id uint) *models.EmergencyTicket {
	t.Helper()
	var ticket models.EmergencyTicket
	require.NoError(t, f.db.First(&ticket, id).Error)
	return &ticket
}

func (f *assignmentFixture) reloadOrg(t *testing.T, id uint) *models.Organization {
	t.Helper()
	var org models.Organization
	require.NoError(t, f.db.First(&org, id).Error)
	return &org
}

func (f *assignmentFixture) statusHistory(t *testing.T, ticketID uint) []models.TicketUpdate {
	t.Helper()
	var updates []models.TicketUpdate
	require.NoError(t, f.db.
		Where("ticket_id = ? AND field_name = ?", ticketID, "status").
		Order("id ASC").Find(&updates).Error)
	return updates
}

func TestProposeAssignmentMovesTicketToPendingAssignment(t *testing.T) {
	f := newAssignmentFixture(t)
	org := seedOrganization(t, f.db, "Mumbai Rescue", 19.08, 72.88, 10, "Rescue")
	seedStaff(t, f.db, org.ID, "Asha", 19.08, 72.88, "rescue")
	ticket := seedTicket(t, f.db, "needs rescue", 4, 19.0760, 72.8777)

	proposal, err := f.service.ProposeAssignment(ticket.ID, "operator")
	require.NoError(t, err)
	require.NotNil(t, proposal)
	assert.Equal(t, org.ID, proposal.Organization.ID)
	assert.Equal(t, 1, proposal.Epoch)

	reloaded := f.reloadTicket(t, ticket.ID)
	assert.Equal(t, models.TicketStatusPendingAssignment, reloaded.Status)
	require.NotNil(t, reloaded.AssignedOrganizationID)
	assert.Equal(t, org.ID, *reloaded.AssignedOrganizationID)
	assert.Equal(t, 1, reloaded.ProposalEpoch)
	require.NotNil(t, reloaded.AssignmentTime)

	// 提议即占用机构负载
	assert.Equal(t, 1, f.reloadOrg(t, org.ID).CurrentLoad)

	// 接受窗口定时器入队，触发时刻为提议时刻+窗口
	calls := f.scheduler.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, ticket.ID, calls[0].TicketID)
	assert.Equal(t, 1, calls[0].Epoch)
	assert.Equal(t, f.clock.Now().Add(300*time.Second), calls[0].FireAt)

	// 一次状态流转只产生一条状态历史
	history := f.statusHistory(t, ticket.ID)
	require.Len(t, history, 1)
	assert.Equal(t, models.TicketStatusPending, history[0].OldValue)
	assert.Equal(t, models.TicketStatusPendingAssignment, history[0].NewValue)
	assert.Equal(t, "operator", history[0].UpdatedBy)

	assert.Equal(t, []uint{ticket.ID}, f.notifier.proposals)
}

func TestProposeAssignmentNoCandidatesKeepsPending(t *testing.T) {
	f := newAssignmentFixture(t)
	ticket := seedTicket(t, f.db, "needs rescue", 4, 19.0760, 72.8777)

	proposal, err := f.service.ProposeAssignment(ticket.ID, "operator")
	require.NoError(t, err)
	assert.Nil(t, proposal)

	reloaded := f.reloadTicket(t, ticket.ID)
	assert.Equal(t, models.TicketStatusPending, reloaded.Status)
	assert.Empty(t, f.scheduler.calls())
	assert.Empty(t, f.statusHistory(t, ticket.ID))
}

func TestProposeAssignmentRejectsWrongState(t *testing.T) {
	f := newAssignmentFixture(t)
	seedOrganization(t, f.db, "Mumbai Rescue", 19.08, 72.88, 10, "Rescue")
	ticket := seedTicket(t, f.db, "needs rescue", 4, 19.0760, 72.8777)

	_, err := f.service.ProposeAssignment(ticket.ID, "operator")
	require.NoError(t, err)

	// 已提议的工单不能重复提议
	_, err = f.service.ProposeAssignment(ticket.ID, "operator")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestProposeAssignmentSkipsFullOrganizations(t *testing.T) {
	f := newAssignmentFixture(t)
	full := seedOrganization(t, f.db, "Full Org", 19.08, 72.88, 2, "Rescue")
	require.NoError(t, f.db.Model(full).Update("current_load", 2).Error)
	open := seedOrganization(t, f.db, "Open Org", 20.0, 73.5, 2, "Rescue")
	ticket := seedTicket(t, f.db, "needs rescue", 4, 19.0760, 72.8777)

	proposal, err := f.service.ProposeAssignment(ticket.ID, "operator")
	require.NoError(t, err)
	require.NotNil(t, proposal)
	// 满载机构即便更近也不参与候选
	assert.Equal(t, open.ID, proposal.Organization.ID)
}

func TestAcceptAssignmentWithinWindow(t *testing.T) {
	f := newAssignmentFixture(t)
	org := seedOrganization(t, f.db, "Mumbai Rescue", 19.08, 72.88, 10, "Rescue")
	staff := seedStaff(t, f.db, org.ID, "Asha", 19.08, 72.88, "rescue")
	ticket := seedTicket(t, f.db, "needs rescue", 4, 19.0760, 72.8777)

	_, err := f.service.ProposeAssignment(ticket.ID, "operator")
	require.NoError(t, err)

	f.clock.Advance(2 * time.Minute)
	eta := f.clock.Now().Add(2 * time.Hour)
	accepted, err := f.service.AcceptAssignment(ticket.ID, org.ID, &eta, "org-operator")
	require.NoError(t, err)

	assert.Equal(t, models.TicketStatusInProgress, accepted.Status)
	require.NotNil(t, accepted.AcceptedAt)
	assert.Equal(t, 0, accepted.ReassignCount)

	// 被派遣人员被置为忙碌
	var reloadedStaff models.Staff
	require.NoError(t, f.db.First(&reloadedStaff, staff.ID).Error)
	assert.Equal(t, models.StaffBusy, reloadedStaff.Availability)

	history := f.statusHistory(t, ticket.ID)
	require.Len(t, history, 2)
	assert.Equal(t, models.TicketStatusInProgress, history[1].NewValue)
}

func TestAcceptAssignmentGuards(t *testing.T) {
	f := newAssignmentFixture(t)
	org := seedOrganization(t, f.db, "Mumbai Rescue", 19.08, 72.88, 10, "Rescue")
	other := seedOrganization(t, f.db, "Other Org", 20.0, 73.5, 10, "Logistics")
	ticket := seedTicket(t, f.db, "needs rescue", 4, 19.0760, 72.8777)
	eta := f.clock.Now().Add(2 * time.Hour)

	// Pending 状态下不能接受
	_, err := f.service.AcceptAssignment(ticket.ID, org.ID, &eta, "op")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = f.service.ProposeAssignment(ticket.ID, "operator")
	require.NoError(t, err)

	// 非被提议机构不能接受
	_, err = f.service.AcceptAssignment(ticket.ID, other.ID, &eta, "op")
	assert.ErrorIs(t, err, ErrMismatchedAssignee)

	// 窗口过期后不能接受
	f.clock.Advance(301 * time.Second)
	_, err = f.service.AcceptAssignment(ticket.ID, org.ID, &eta, "op")
	assert.ErrorIs(t, err, ErrWindowExpired)
}

func TestAcceptAssignmentAtWindowBoundary(t *testing.T) {
	f := newAssignmentFixture(t)
	org := seedOrganization(t, f.db, "Mumbai Rescue", 19.08, 72.88, 10, "Rescue")
	ticket := seedTicket(t, f.db, "needs rescue", 4, 19.0760, 72.8777)

	_, err := f.service.ProposeAssignment(ticket.ID, "operator")
	require.NoError(t, err)

	// 恰好在窗口边界上仍可接受
	f.clock.Advance(300 * time.Second)
	eta := f.clock.Now().Add(time.Hour)
	_, err = f.service.AcceptAssignment(ticket.ID, org.ID, &eta, "op")
	assert.NoError(t, err)
}

func TestAcceptAssignmentDefaultsCompletionFromClock(t *testing.T) {
	f := newAssignmentFixture(t)
	org := seedOrganization(t, f.db, "Mumbai Rescue", 19.08, 72.88, 10, "Rescue")
	ticket := seedTicket(t, f.db, "needs rescue", 4, 19.0760, 72.8777)

	_, err := f.service.ProposeAssignment(ticket.ID, "operator")
	require.NoError(t, err)

	// 未给出预计完成时间时按注入时钟加默认时长，不取墙钟
	f.clock.Advance(2 * time.Minute)
	accepted, err := f.service.AcceptAssignment(ticket.ID, org.ID, nil, "op")
	require.NoError(t, err)

	require.NotNil(t, accepted.EstimatedCompletion)
	expected := f.clock.Now().Add(2 * time.Hour)
	assert.WithinDuration(t, expected, *accepted.EstimatedCompletion, time.Second)
}

func TestRejectAssignmentRevertsAndReproposes(t *testing.T) {
	f := newAssignmentFixture(t)
	first := seedOrganization(t, f.db, "First Org", 19.08, 72.88, 10, "Rescue")
	second := seedOrganization(t, f.db, "Second Org", 19.5, 73.0, 10, "Rescue")
	ticket := seedTicket(t, f.db, "needs rescue", 4, 19.0760, 72.8777)

	proposal, err := f.service.ProposeAssignment(ticket.ID, "operator")
	require.NoError(t, err)
	require.Equal(t, first.ID, proposal.Organization.ID)

	reloaded, err := f.service.RejectAssignment(ticket.ID, first.ID, "all teams deployed", "org-operator")
	require.NoError(t, err)

	// 拒绝后立即重新提议；第一机构负载仍被剩余容量计入候选，
	// 但此时得分不变，重新提议可能再命中同一机构或换机构，
	// 这里只断言状态机行为
	assert.Equal(t, models.TicketStatusPendingAssignment, reloaded.Status)
	assert.Equal(t, 2, reloaded.ProposalEpoch)

	history := f.statusHistory(t, ticket.ID)
	// propose + reject-revert + re-propose
	require.Len(t, history, 3)
	assert.Contains(t, history[1].Notes, "rejected")
	assert.Equal(t, models.TicketStatusPending, history[1].NewValue)
	assert.Equal(t, models.TicketStatusPendingAssignment, history[2].NewValue)

	// 只有当前被分配机构占用负载
	loadSum := f.reloadOrg(t, first.ID).CurrentLoad + f.reloadOrg(t, second.ID).CurrentLoad
	assert.Equal(t, 1, loadSum)
}

func TestRejectAssignmentMismatchedOrganization(t *testing.T) {
	f := newAssignmentFixture(t)
	org := seedOrganization(t, f.db, "Mumbai Rescue", 19.08, 72.88, 10, "Rescue")
	other := seedOrganization(t, f.db, "Other Org", 20.0, 73.5, 10, "Logistics")
	ticket := seedTicket(t, f.db, "needs rescue", 4, 19.0760, 72.8777)

	_, err := f.service.ProposeAssignment(ticket.ID, "operator")
	require.NoError(t, err)

	// 第一被提议机构是 org（更近），other 无权拒绝
	reloaded := f.reloadTicket(t, ticket.ID)
	require.Equal(t, org.ID, *reloaded.AssignedOrganizationID)

	_, err = f.service.RejectAssignment(ticket.ID, other.ID, "", "op")
	assert.ErrorIs(t, err, ErrMismatchedAssignee)
}

func TestHandleAcceptanceTimeoutReassigns(t *testing.T) {
	f := newAssignmentFixture(t)
	org := seedOrganization(t, f.db, "Mumbai Rescue", 19.08, 72.88, 10, "Rescue")
	ticket := seedTicket(t, f.db, "needs rescue", 4, 19.0760, 72.8777)

	_, err := f.service.ProposeAssignment(ticket.ID, "operator")
	require.NoError(t, err)

	f.clock.Advance(301 * time.Second)
	f.service.HandleAcceptanceTimeout(ticket.ID, 1)

	reloaded := f.reloadTicket(t, ticket.ID)
	assert.Equal(t, models.TicketStatusPendingAssignment, reloaded.Status)
	assert.Equal(t, 2, reloaded.ProposalEpoch)
	assert.Equal(t, 1, reloaded.ReassignCount)

	// 超时重分配恰好产生两条新的状态记录：回退 + 新提议
	history := f.statusHistory(t, ticket.ID)
	require.Len(t, history, 3)
	assert.Equal(t, models.TicketStatusPending, history[1].NewValue)
	assert.Equal(t, systemActor, history[1].UpdatedBy)
	assert.Equal(t, models.TicketStatusPendingAssignment, history[2].NewValue)

	// 负载先释放再占用，净值不变
	assert.Equal(t, 1, f.reloadOrg(t, org.ID).CurrentLoad)
}

func TestHandleAcceptanceTimeoutStaleEpochIsNoOp(t *testing.T) {
	f := newAssignmentFixture(t)
	org := seedOrganization(t, f.db, "Mumbai Rescue", 19.08, 72.88, 10, "Rescue")
	ticket := seedTicket(t, f.db, "needs rescue", 4, 19.0760, 72.8777)

	_, err := f.service.ProposeAssignment(ticket.ID, "operator")
	require.NoError(t, err)
	before := f.reloadTicket(t, ticket.ID)

	// epoch 0 的定时器早已被第 1 期提议取代
	f.service.HandleAcceptanceTimeout(ticket.ID, 0)

	after := f.reloadTicket(t, ticket.ID)
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, before.ProposalEpoch, after.ProposalEpoch)
	assert.Equal(t, before.ReassignCount, after.ReassignCount)
	assert.Len(t, f.statusHistory(t, ticket.ID), 1)
	assert.Equal(t, 1, f.reloadOrg(t, org.ID).CurrentLoad)
}

func TestHandleAcceptanceTimeoutAfterAcceptIsNoOp(t *testing.T) {
	f := newAssignmentFixture(t)
	org := seedOrganization(t, f.db, "Mumbai Rescue", 19.08, 72.88, 10, "Rescue")
	ticket := seedTicket(t, f.db, "needs rescue", 4, 19.0760, 72.8777)

	_, err := f.service.ProposeAssignment(ticket.ID, "operator")
	require.NoError(t, err)
	_, err = f.service.AcceptAssignment(ticket.ID, org.ID, nil, "op")
	require.NoError(t, err)

	// 接受后定时器才触发，必须无副作用
	f.clock.Advance(301 * time.Second)
	f.service.HandleAcceptanceTimeout(ticket.ID, 1)

	reloaded := f.reloadTicket(t, ticket.ID)
	assert.Equal(t, models.TicketStatusInProgress, reloaded.Status)
	assert.Len(t, f.statusHistory(t, ticket.ID), 2)
}

func TestEscalationAfterConsecutiveTimeouts(t *testing.T) {
	f := newAssignmentFixture(t)
	seedOrganization(t, f.db, "Mumbai Rescue", 19.08, 72.88, 10, "Rescue")
	ticket := seedTicket(t, f.db, "water", 4, 19.0760, 72.8777)
	require.Equal(t, 3, ticket.Priority)

	_, err := f.service.ProposeAssignment(ticket.ID, "operator")
	require.NoError(t, err)

	// 连续三次超时后优先级升级
	for epoch := 1; epoch <= 3; epoch++ {
		f.clock.Advance(301 * time.Second)
		f.service.HandleAcceptanceTimeout(ticket.ID, epoch)
	}

	reloaded := f.reloadTicket(t, ticket.ID)
	assert.Equal(t, 3, reloaded.ReassignCount)
	assert.Equal(t, 4, reloaded.Priority)
	assert.Equal(t, []uint{ticket.ID}, f.notifier.escalations)

	var priorityHistory []models.TicketUpdate
	require.NoError(t, f.db.
		Where("ticket_id = ? AND field_name = ?", ticket.ID, "priority").
		Find(&priorityHistory).Error)
	require.Len(t, priorityHistory, 1)
	assert.Equal(t, "3", priorityHistory[0].OldValue)
	assert.Equal(t, "4", priorityHistory[0].NewValue)
}

func TestEscalationCapsAtMaxPriority(t *testing.T) {
	f := newAssignmentFixture(t)
	seedOrganization(t, f.db, "Mumbai Rescue", 19.08, 72.88, 10, "Rescue")
	ticket := seedTicket(t, f.db, "needs rescue", 4, 19.0760, 72.8777)
	require.Equal(t, models.PriorityMax, ticket.Priority)

	_, err := f.service.ProposeAssignment(ticket.ID, "operator")
	require.NoError(t, err)

	for epoch := 1; epoch <= 5; epoch++ {
		f.clock.Advance(301 * time.Second)
		f.service.HandleAcceptanceTimeout(ticket.ID, epoch)
	}

	reloaded := f.reloadTicket(t, ticket.ID)
	assert.Equal(t, models.PriorityMax, reloaded.Priority)
	assert.Empty(t, f.notifier.escalations)
}

func TestCompleteTicketReleasesResources(t *testing.T) {
	f := newAssignmentFixture(t)
	org := seedOrganization(t, f.db, "Mumbai Rescue", 19.08, 72.88, 10, "Rescue")
	staff := seedStaff(t, f.db, org.ID, "Asha", 19.08, 72.88, "rescue")
	ticket := seedTicket(t, f.db, "needs rescue", 4, 19.0760, 72.8777)

	_, err := f.service.ProposeAssignment(ticket.ID, "operator")
	require.NoError(t, err)
	_, err = f.service.AcceptAssignment(ticket.ID, org.ID, nil, "op")
	require.NoError(t, err)

	done, err := f.service.CompleteTicket(ticket.ID, "org-operator")
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusDone, done.Status)
	require.NotNil(t, done.ActualCompletion)

	assert.Equal(t, 0, f.reloadOrg(t, org.ID).CurrentLoad)

	var reloadedStaff models.Staff
	require.NoError(t, f.db.First(&reloadedStaff, staff.ID).Error)
	assert.Equal(t, models.StaffAvailable, reloadedStaff.Availability)

	// Done 是终态
	_, err = f.service.CompleteTicket(ticket.ID, "op")
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = f.service.CancelTicket(ticket.ID, "", "op")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelTicketFromPendingAssignment(t *testing.T) {
	f := newAssignmentFixture(t)
	org := seedOrganization(t, f.db, "Mumbai Rescue", 19.08, 72.88, 10, "Rescue")
	ticket := seedTicket(t, f.db, "needs rescue", 4, 19.0760, 72.8777)

	_, err := f.service.ProposeAssignment(ticket.ID, "operator")
	require.NoError(t, err)

	cancelled, err := f.service.CancelTicket(ticket.ID, "duplicate report", "operator")
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusCancelled, cancelled.Status)

	// 取消释放已占用的负载
	assert.Equal(t, 0, f.reloadOrg(t, org.ID).CurrentLoad)

	history := f.statusHistory(t, ticket.ID)
	require.Len(t, history, 2)
	assert.Equal(t, "duplicate report", history[1].Notes)
}

func TestDeployResponseTeamSwapsLoad(t *testing.T) {
	f := newAssignmentFixture(t)
	first := seedOrganization(t, f.db, "First Org", 19.08, 72.88, 10, "Rescue")
	second := seedOrganization(t, f.db, "Second Org", 20.0, 73.5, 10, "Rescue")
	staff := seedStaff(t, f.db, second.ID, "Ravi", 20.0, 73.5, "rescue")
	ticket := seedTicket(t, f.db, "needs rescue", 4, 19.0760, 72.8777)

	_, err := f.service.ProposeAssignment(ticket.ID, "operator")
	require.NoError(t, err)
	require.Equal(t, 1, f.reloadOrg(t, first.ID).CurrentLoad)

	eta := f.clock.Now().Add(3 * time.Hour)
	deployed, err := f.service.DeployResponseTeam(ticket.ID, second.ID, []uint{staff.ID}, &eta, "operator")
	require.NoError(t, err)

	assert.Equal(t, models.TicketStatusInProgress, deployed.Status)
	require.NotNil(t, deployed.AssignedOrganizationID)
	assert.Equal(t, second.ID, *deployed.AssignedOrganizationID)

	// 旧机构释放，新机构占用
	assert.Equal(t, 0, f.reloadOrg(t, first.ID).CurrentLoad)
	assert.Equal(t, 1, f.reloadOrg(t, second.ID).CurrentLoad)

	var reloadedStaff models.Staff
	require.NoError(t, f.db.First(&reloadedStaff, staff.ID).Error)
	assert.Equal(t, models.StaffBusy, reloadedStaff.Availability)
}

func TestDeployResponseTeamUnknownOrganization(t *testing.T) {
	f := newAssignmentFixture(t)
	ticket := seedTicket(t, f.db, "needs rescue", 4, 19.0760, 72.8777)

	_, err := f.service.DeployResponseTeam(ticket.ID, 999, nil, nil, "operator")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetResponseStatus(t *testing.T) {
	f := newAssignmentFixture(t)
	org := seedOrganization(t, f.db, "Mumbai Rescue", 19.08, 72.88, 10, "Rescue")
	ticket := seedTicket(t, f.db, "needs rescue", 4, 19.0760, 72.8777)

	status, err := f.service.GetResponseStatus(ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusPending, status.Status)
	assert.Nil(t, status.AcceptanceTimeRemaining)

	_, err = f.service.ProposeAssignment(ticket.ID, "operator")
	require.NoError(t, err)

	f.clock.Advance(100 * time.Second)
	status, err = f.service.GetResponseStatus(ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, status.AcceptanceTimeRemaining)
	assert.InDelta(t, 200, *status.AcceptanceTimeRemaining, 0.1)

	// 超期的处置中工单标记为 overdue
	eta := f.clock.Now().Add(time.Hour)
	_, err = f.service.AcceptAssignment(ticket.ID, org.ID, &eta, "op")
	require.NoError(t, err)
	f.clock.Advance(2 * time.Hour)
	status, err = f.service.GetResponseStatus(ticket.ID)
	require.NoError(t, err)
	assert.True(t, status.IsOverdue)
}

func TestGetRecommendationDoesNotMutate(t *testing.T) {
	f := newAssignmentFixture(t)
	org := seedOrganization(t, f.db, "Mumbai Rescue", 19.08, 72.88, 10, "Rescue")
	ticket := seedTicket(t, f.db, "needs rescue", 4, 19.0760, 72.8777)

	rec, err := f.service.GetRecommendation(ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, org.ID, rec.Organization.ID)

	reloaded := f.reloadTicket(t, ticket.ID)
	assert.Equal(t, models.TicketStatusPending, reloaded.Status)
	assert.Equal(t, 0, f.reloadOrg(t, org.ID).CurrentLoad)
	assert.Empty(t, f.scheduler.calls())
}
