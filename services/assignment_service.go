package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"resq-http-service/config"
	"resq-http-service/models"

	"gorm.io/gorm"
)

// 每个工单一把锁，Propose/Accept/Reject/TimerFire 以及人工编辑
// 在同一工单上串行执行。跨工单之间互不阻塞。
var ticketLocks sync.Map

// lockTicket 返回指定工单的互斥锁
func lockTicket(ticketID uint) *sync.Mutex {
	lock, _ := ticketLocks.LoadOrStore(ticketID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// 状态机和延迟队列共用的操作者标识
const systemActor = "system"

// 接受分配时未给出预计完成时间的默认时长
const defaultCompletionWindow = 2 * time.Hour

// AssignmentProposal 表示一次分配提议（瞬态，不落库，体现在工单字段上）
type AssignmentProposal struct {
	TicketID          uint                 `json:"ticket_id"`
	Epoch             int                  `json:"epoch"`
	Organization      *models.Organization `json:"organization"`
	OrganizationScore float64              `json:"organization_score"`
	Staff             *models.Staff        `json:"staff,omitempty"`
	StaffScore        float64              `json:"staff_score,omitempty"`
	Division          *models.Division     `json:"division,omitempty"`
	DivisionScore     float64              `json:"division_score,omitempty"`
	Deadline          time.Time            `json:"acceptance_deadline"`
}

// ResponseStatus 表示工单当前的响应状态
type ResponseStatus struct {
	TicketID                uint     `json:"ticket_id"`
	Status                  string   `json:"status"`
	Priority                int      `json:"priority"`
	AcceptanceTimeRemaining *float64 `json:"acceptance_time_remaining,omitempty"` // 秒
	IsOverdue               bool     `json:"is_overdue"`
}

// AssignmentNotifier 向运营侧发布分配相关的通知。
// 只负责发布，送达语义在下游。
type AssignmentNotifier interface {
	NotifyProposal(ticket *models.EmergencyTicket, org *models.Organization, deadline time.Time)
	NotifyEscalation(ticket *models.EmergencyTicket)
}

// InterfaceAssignmentService defines the assignment state machine interface
type InterfaceAssignmentService interface {
	GetRecommendation(ticketID uint) (*AssignmentProposal, error)
	ProposeAssignment(ticketID uint, actor string) (*AssignmentProposal, error)
	AcceptAssignment(ticketID, orgID uint, estimatedCompletion *time.Time, actor string) (*models.EmergencyTicket, error)
	RejectAssignment(ticketID, orgID uint, reason, actor string) (*models.EmergencyTicket, error)
	CompleteTicket(ticketID uint, actor string) (*models.EmergencyTicket, error)
	CancelTicket(ticketID uint, reason, actor string) (*models.EmergencyTicket, error)
	DeployResponseTeam(ticketID, orgID uint, staffIDs []uint, estimatedCompletion *time.Time, actor string) (*models.EmergencyTicket, error)
	HandleAcceptanceTimeout(ticketID uint, epoch int)
	GetResponseStatus(ticketID uint) (*ResponseStatus, error)
}

// AssignmentService 拥有工单生命周期的状态机：
// Pending → Pending Assignment → In Progress → Done，
// 拒绝或接受窗口超时回到 Pending 并立即重新提议。
type AssignmentService struct {
	DB        *gorm.DB
	Config    *config.Config
	Scoring   *ScoringService
	History   InterfaceHistoryService
	Scheduler InterfaceSchedulerService
	Notifier  AssignmentNotifier
	Clock     Clock
}

// NewAssignmentService 创建一个新的分配服务
func NewAssignmentService(
	db *gorm.DB,
	cfg *config.Config,
	scoring *ScoringService,
	history InterfaceHistoryService,
	scheduler InterfaceSchedulerService,
	notifier AssignmentNotifier,
	clock Clock,
) InterfaceAssignmentService {
	return &AssignmentService{
		DB:        db,
		Config:    cfg,
		Scoring:   scoring,
		History:   history,
		Scheduler: scheduler,
		Notifier:  notifier,
		Clock:     clock,
	}
}

func (s *AssignmentService) getTicket(ticketID uint) (*models.EmergencyTicket, error) {
	var ticket models.EmergencyTicket
	if err := s.DB.First(&ticket, ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: ticket %d", ErrNotFound, ticketID)
		}
		return nil, fmt.Errorf("%w: query ticket: %v", ErrStorage, err)
	}
	return &ticket, nil
}

// activeOrganizations 查询有剩余容量的活跃机构
func (s *AssignmentService) activeOrganizations() ([]models.Organization, error) {
	var orgs []models.Organization
	if err := s.DB.
		Where("status = ? AND current_load < capacity", "Active").
		Find(&orgs).Error; err != nil {
		return nil, fmt.Errorf("%w: query organizations: %v", ErrStorage, err)
	}
	return orgs, nil
}

// availableStaff 查询可派遣的人员，按类别做技能预筛
func (s *AssignmentService) availableStaff(category string) ([]models.Staff, error) {
	query := s.DB.Where("status = ? AND availability = ?", "Active", models.StaffAvailable)

	cat := strings.ToLower(category)
	switch {
	case strings.Contains(cat, "medical"):
		query = query.Where("skills LIKE ?", "%medical%")
	case strings.Contains(cat, "rescue") || strings.Contains(cat, "fire"):
		query = query.Where("skills LIKE ?", "%rescue%")
	}

	var staff []models.Staff
	if err := query.Find(&staff).Error; err != nil {
		return nil, fmt.Errorf("%w: query staff: %v", ErrStorage, err)
	}
	return staff, nil
}

// activeDivisions 查询有剩余容量的活跃分队
func (s *AssignmentService) activeDivisions() ([]models.Division, error) {
	var divisions []models.Division
	if err := s.DB.
		Where("status = ? AND current_load < capacity", "Active").
		Find(&divisions).Error; err != nil {
		return nil, fmt.Errorf("%w: query divisions: %v", ErrStorage, err)
	}
	return divisions, nil
}

// rankCandidates 对当前候选池做一次完整排名
func (s *AssignmentService) rankCandidates(ticket *models.EmergencyTicket) (*AssignmentProposal, error) {
	orgs, err := s.activeOrganizations()
	if err != nil {
		return nil, err
	}
	bestOrg, orgScore, err := s.Scoring.BestOrganization(ticket, orgs)
	if err != nil {
		return nil, err
	}
	if bestOrg == nil {
		// 没有候选机构：无推荐，不是错误
		return nil, nil
	}

	staff, err := s.availableStaff(ticket.Category)
	if err != nil {
		return nil, err
	}
	bestStaff, staffScore, err := s.Scoring.BestStaff(ticket, staff)
	if err != nil {
		return nil, err
	}

	divisions, err := s.activeDivisions()
	if err != nil {
		return nil, err
	}
	bestDivision, divisionScore, err := s.Scoring.BestDivision(ticket, divisions)
	if err != nil {
		return nil, err
	}

	return &AssignmentProposal{
		TicketID:          ticket.ID,
		Organization:      bestOrg,
		OrganizationScore: orgScore,
		Staff:             bestStaff,
		StaffScore:        staffScore,
		Division:          bestDivision,
		DivisionScore:     divisionScore,
	}, nil
}

// GetRecommendation 返回对工单的分配推荐，不做任何状态变更
func (s *AssignmentService) GetRecommendation(ticketID uint) (*AssignmentProposal, error) {
	ticket, err := s.getTicket(ticketID)
	if err != nil {
		return nil, err
	}
	return s.rankCandidates(ticket)
}

// ProposeAssignment 对 Pending 状态的工单发起分配提议，
// 启动接受窗口定时器。候选池为空时工单保持 Pending，返回 nil。
func (s *AssignmentService) ProposeAssignment(ticketID uint, actor string) (*AssignmentProposal, error) {
	lock := lockTicket(ticketID)
	lock.Lock()
	defer lock.Unlock()

	ticket, err := s.getTicket(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != models.TicketStatusPending {
		return nil, fmt.Errorf("%w: propose requires status %q, ticket %d is %q",
			ErrInvalidState, models.TicketStatusPending, ticketID, ticket.Status)
	}

	return s.proposeLocked(ticket, actor)
}

// proposeLocked 在已持有工单锁的前提下执行提议
func (s *AssignmentService) proposeLocked(ticket *models.EmergencyTicket, actor string) (*AssignmentProposal, error) {
	proposal, err := s.rankCandidates(ticket)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		config.Warning("工单 %d 没有可用候选机构，保持 Pending", ticket.ID)
		return nil, nil
	}

	now := s.Clock.Now()
	epoch := ticket.ProposalEpoch + 1
	deadline := now.Add(s.Config.AcceptanceWindow())
	proposal.Epoch = epoch
	proposal.Deadline = deadline

	var staffID *uint
	if proposal.Staff != nil {
		staffID = &proposal.Staff.ID
	}
	var divisionID *uint
	if proposal.Division != nil {
		divisionID = &proposal.Division.ID
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":                   models.TicketStatusPendingAssignment,
			"assigned_organization_id": proposal.Organization.ID,
			"assigned_staff_id":        staffID,
			"assigned_division_id":     divisionID,
			"assignment_time":          now,
			"proposal_epoch":           epoch,
			"updated_at":               now,
		}
		if err := tx.Model(&models.EmergencyTicket{}).Where("id = ?", ticket.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("%w: propose assignment: %v", ErrStorage, err)
		}

		// 提议即计入机构/分队负载
		if err := s.adjustLoads(tx, &proposal.Organization.ID, divisionID, 1); err != nil {
			return err
		}

		note := fmt.Sprintf("proposed to organization %d (score %.1f), epoch %d", proposal.Organization.ID, proposal.OrganizationScore, epoch)
		return s.History.Append(tx, ticket.ID, actor, "status", ticket.Status, models.TicketStatusPendingAssignment, note)
	})
	if err != nil {
		return nil, err
	}

	ticket.Status = models.TicketStatusPendingAssignment
	ticket.AssignedOrganizationID = &proposal.Organization.ID
	ticket.AssignedStaffID = staffID
	ticket.AssignedDivisionID = divisionID
	ticket.AssignmentTime = &now
	ticket.ProposalEpoch = epoch

	if err := s.Scheduler.ScheduleAcceptanceCheck(ticket.ID, epoch, deadline); err != nil {
		// 定时器入队失败不回滚提议，记录错误等待人工处理
		config.Error("工单 %d 接受窗口定时器入队失败: %v", ticket.ID, err)
	}

	if s.Notifier != nil {
		s.Notifier.NotifyProposal(ticket, proposal.Organization, deadline)
	}

	return proposal, nil
}

// AcceptAssignment 被提议的机构在接受窗口内接受分配。
// 未给出预计完成时间时按当前时钟加默认时长计算。
func (s *AssignmentService) AcceptAssignment(ticketID, orgID uint, estimatedCompletion *time.Time, actor string) (*models.EmergencyTicket, error) {
	lock := lockTicket(ticketID)
	lock.Lock()
	defer lock.Unlock()

	ticket, err := s.getTicket(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != models.TicketStatusPendingAssignment {
		return nil, fmt.Errorf("%w: accept requires status %q, ticket %d is %q",
			ErrInvalidState, models.TicketStatusPendingAssignment, ticketID, ticket.Status)
	}
	if ticket.AssignedOrganizationID == nil || *ticket.AssignedOrganizationID != orgID {
		return nil, fmt.Errorf("%w: organization %d is not assigned to ticket %d", ErrMismatchedAssignee, orgID, ticketID)
	}

	now := s.Clock.Now()
	if ticket.AssignmentTime != nil && now.Sub(*ticket.AssignmentTime) > s.Config.AcceptanceWindow() {
		return nil, fmt.Errorf("%w: ticket %d will be reassigned", ErrWindowExpired, ticketID)
	}

	if estimatedCompletion == nil {
		eta := now.Add(defaultCompletionWindow)
		estimatedCompletion = &eta
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":               models.TicketStatusInProgress,
			"accepted_at":          now,
			"estimated_completion": *estimatedCompletion,
			"reassign_count":       0,
			"updated_at":           now,
		}
		if err := tx.Model(&models.EmergencyTicket{}).Where("id = ?", ticketID).Updates(updates).Error; err != nil {
			return fmt.Errorf("%w: accept assignment: %v", ErrStorage, err)
		}

		// 被派遣人员置为忙碌
		if ticket.AssignedStaffID != nil {
			if err := s.markStaff(tx, *ticket.AssignedStaffID, models.StaffBusy,
				fmt.Sprintf("Responding to ticket %d", ticketID)); err != nil {
				return err
			}
		}

		note := fmt.Sprintf("accepted by organization %d", orgID)
		return s.History.Append(tx, ticketID, actor, "status", ticket.Status, models.TicketStatusInProgress, note)
	})
	if err != nil {
		return nil, err
	}

	return s.getTicket(ticketID)
}

// RejectAssignment 被提议的机构拒绝分配，工单回到 Pending 并立即重新提议
func (s *AssignmentService) RejectAssignment(ticketID, orgID uint, reason, actor string) (*models.EmergencyTicket, error) {
	lock := lockTicket(ticketID)
	lock.Lock()
	defer lock.Unlock()

	ticket, err := s.getTicket(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != models.TicketStatusPendingAssignment {
		return nil, fmt.Errorf("%w: reject requires status %q, ticket %d is %q",
			ErrInvalidState, models.TicketStatusPendingAssignment, ticketID, ticket.Status)
	}
	if ticket.AssignedOrganizationID == nil || *ticket.AssignedOrganizationID != orgID {
		return nil, fmt.Errorf("%w: organization %d is not assigned to ticket %d", ErrMismatchedAssignee, orgID, ticketID)
	}

	if reason == "" {
		reason = "no reason provided"
	}
	if err := s.revertToPending(ticket, actor, "rejected: "+reason); err != nil {
		return nil, err
	}

	// 立即重新提议，不等待
	if _, err := s.proposeLocked(ticket, systemActor); err != nil {
		config.Error("工单 %d 拒绝后重新提议失败: %v", ticketID, err)
	}

	return s.getTicket(ticketID)
}

// revertToPending 将 Pending Assignment 状态的工单回退到 Pending，
// 释放负载并清空分配字段。调用方必须已持有工单锁。
func (s *AssignmentService) revertToPending(ticket *models.EmergencyTicket, actor, note string) error {
	now := s.Clock.Now()
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.adjustLoads(tx, ticket.AssignedOrganizationID, ticket.AssignedDivisionID, -1); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":                   models.TicketStatusPending,
			"assigned_organization_id": nil,
			"assigned_staff_id":        nil,
			"assigned_division_id":     nil,
			"assignment_time":          nil,
			"updated_at":               now,
		}
		if err := tx.Model(&models.EmergencyTicket{}).Where("id = ?", ticket.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("%w: revert ticket: %v", ErrStorage, err)
		}

		return s.History.Append(tx, ticket.ID, actor, "status", ticket.Status, models.TicketStatusPending, note)
	})
	if err != nil {
		return err
	}

	ticket.Status = models.TicketStatusPending
	ticket.AssignedOrganizationID = nil
	ticket.AssignedStaffID = nil
	ticket.AssignedDivisionID = nil
	ticket.AssignmentTime = nil
	return nil
}

// HandleAcceptanceTimeout 接受窗口定时器回调。
// 只有当工单仍处于 Pending Assignment 且 epoch 与当前提议一致时才生效，
// 被新提议取代的过期定时器在这里被安静地忽略。
func (s *AssignmentService) HandleAcceptanceTimeout(ticketID uint, epoch int) {
	lock := lockTicket(ticketID)
	lock.Lock()
	defer lock.Unlock()

	ticket, err := s.getTicket(ticketID)
	if err != nil {
		config.Warning("接受窗口超时处理: %v", err)
		return
	}

	if ticket.Status != models.TicketStatusPendingAssignment || ticket.ProposalEpoch != epoch {
		// 过期定时器，无副作用
		return
	}

	config.Info("工单 %d 第 %d 期提议接受窗口超时，重新分配", ticketID, epoch)

	if err := s.revertToPending(ticket, systemActor, "acceptance window expired"); err != nil {
		config.Error("工单 %d 超时回退失败: %v", ticketID, err)
		return
	}

	// 连续超时计数与升级策略
	ticket.ReassignCount++
	updates := map[string]interface{}{"reassign_count": ticket.ReassignCount}
	if s.Config.EscalationThreshold > 0 && ticket.ReassignCount >= s.Config.EscalationThreshold &&
		ticket.Priority < models.PriorityMax {
		oldPriority := ticket.Priority
		ticket.Priority++
		updates["priority"] = ticket.Priority
		note := fmt.Sprintf("escalated after %d expired acceptance windows", ticket.ReassignCount)
		if err := s.History.Append(nil, ticketID, systemActor, "priority",
			fmt.Sprintf("%d", oldPriority), fmt.Sprintf("%d", ticket.Priority), note); err != nil {
			config.Error("工单 %d 升级历史写入失败: %v", ticketID, err)
		}
		if s.Notifier != nil {
			s.Notifier.NotifyEscalation(ticket)
		}
	}
	if err := s.DB.Model(&models.EmergencyTicket{}).Where("id = ?", ticketID).Updates(updates).Error; err != nil {
		config.Error("工单 %d 重分配计数更新失败: %v", ticketID, err)
	}

	// 对当前可用的候选池重新提议；没有候选时保持 Pending
	if _, err := s.proposeLocked(ticket, systemActor); err != nil {
		config.Error("工单 %d 超时后重新提议失败: %v", ticketID, err)
	}
}

// CompleteTicket 完成处置中的工单
func (s *AssignmentService) CompleteTicket(ticketID uint, actor string) (*models.EmergencyTicket, error) {
	lock := lockTicket(ticketID)
	lock.Lock()
	defer lock.Unlock()

	ticket, err := s.getTicket(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != models.TicketStatusInProgress {
		return nil, fmt.Errorf("%w: complete requires status %q, ticket %d is %q",
			ErrInvalidState, models.TicketStatusInProgress, ticketID, ticket.Status)
	}

	now := s.Clock.Now()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":            models.TicketStatusDone,
			"actual_completion": now,
			"updated_at":        now,
		}
		if err := tx.Model(&models.EmergencyTicket{}).Where("id = ?", ticketID).Updates(updates).Error; err != nil {
			return fmt.Errorf("%w: complete ticket: %v", ErrStorage, err)
		}

		// 完成时释放负载、恢复人员可用
		if err := s.adjustLoads(tx, ticket.AssignedOrganizationID, ticket.AssignedDivisionID, -1); err != nil {
			return err
		}
		if ticket.AssignedStaffID != nil {
			if err := s.markStaff(tx, *ticket.AssignedStaffID, models.StaffAvailable, ""); err != nil {
				return err
			}
		}

		return s.History.Append(tx, ticketID, actor, "status", ticket.Status, models.TicketStatusDone, "ticket completed")
	})
	if err != nil {
		return nil, err
	}

	return s.getTicket(ticketID)
}

// CancelTicket 显式取消，任何非 Done 的非终态都可以取消
func (s *AssignmentService) CancelTicket(ticketID uint, reason, actor string) (*models.EmergencyTicket, error) {
	lock := lockTicket(ticketID)
	lock.Lock()
	defer lock.Unlock()

	ticket, err := s.getTicket(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsTerminal() {
		return nil, fmt.Errorf("%w: ticket %d is %s", ErrInvalidState, ticketID, ticket.Status)
	}

	now := s.Clock.Now()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// 已占用的负载在取消时释放
		if ticket.Status == models.TicketStatusPendingAssignment || ticket.Status == models.TicketStatusInProgress {
			if err := s.adjustLoads(tx, ticket.AssignedOrganizationID, ticket.AssignedDivisionID, -1); err != nil {
				return err
			}
		}
		if ticket.Status == models.TicketStatusInProgress && ticket.AssignedStaffID != nil {
			if err := s.markStaff(tx, *ticket.AssignedStaffID, models.StaffAvailable, ""); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{
			"status":     models.TicketStatusCancelled,
			"updated_at": now,
		}
		if err := tx.Model(&models.EmergencyTicket{}).Where("id = ?", ticketID).Updates(updates).Error; err != nil {
			return fmt.Errorf("%w: cancel ticket: %v", ErrStorage, err)
		}

		if reason == "" {
			reason = "cancelled by operator"
		}
		return s.History.Append(tx, ticketID, actor, "status", ticket.Status, models.TicketStatusCancelled, reason)
	})
	if err != nil {
		return nil, err
	}

	return s.getTicket(ticketID)
}

// DeployResponseTeam 人工直接派遣响应队伍（跳过接受窗口）
func (s *AssignmentService) DeployResponseTeam(ticketID, orgID uint, staffIDs []uint, estimatedCompletion *time.Time, actor string) (*models.EmergencyTicket, error) {
	lock := lockTicket(ticketID)
	lock.Lock()
	defer lock.Unlock()

	ticket, err := s.getTicket(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsTerminal() {
		return nil, fmt.Errorf("%w: ticket %d is %s", ErrInvalidState, ticketID, ticket.Status)
	}

	var org models.Organization
	if err := s.DB.First(&org, orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: organization %d", ErrNotFound, orgID)
		}
		return nil, fmt.Errorf("%w: query organization: %v", ErrStorage, err)
	}

	now := s.Clock.Now()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// 人工派遣也维护负载：释放旧机构，占用新机构
		if ticket.Status == models.TicketStatusPendingAssignment || ticket.Status == models.TicketStatusInProgress {
			if err := s.adjustLoads(tx, ticket.AssignedOrganizationID, ticket.AssignedDivisionID, -1); err != nil {
				return err
			}
		}
		if err := s.adjustLoads(tx, &orgID, nil, 1); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":                   models.TicketStatusInProgress,
			"assigned_organization_id": orgID,
			"accepted_at":              now,
			"estimated_completion":     estimatedCompletion,
			"updated_at":               now,
		}
		if err := tx.Model(&models.EmergencyTicket{}).Where("id = ?", ticketID).Updates(updates).Error; err != nil {
			return fmt.Errorf("%w: deploy response team: %v", ErrStorage, err)
		}

		for _, staffID := range staffIDs {
			if err := s.markStaff(tx, staffID, models.StaffBusy,
				fmt.Sprintf("Responding to ticket %d", ticketID)); err != nil {
				return err
			}
		}

		note := fmt.Sprintf("response team deployed by organization %d (%d staff)", orgID, len(staffIDs))
		return s.History.Append(tx, ticketID, actor, "status", ticket.Status, models.TicketStatusInProgress, note)
	})
	if err != nil {
		return nil, err
	}

	return s.getTicket(ticketID)
}

// GetResponseStatus 返回工单状态、接受窗口剩余时间和是否超期
func (s *AssignmentService) GetResponseStatus(ticketID uint) (*ResponseStatus, error) {
	ticket, err := s.getTicket(ticketID)
	if err != nil {
		return nil, err
	}

	status := &ResponseStatus{
		TicketID: ticket.ID,
		Status:   ticket.Status,
		Priority: ticket.Priority,
	}

	now := s.Clock.Now()
	if ticket.Status == models.TicketStatusPendingAssignment && ticket.AssignmentTime != nil {
		remaining := s.Config.AcceptanceWindow().Seconds() - now.Sub(*ticket.AssignmentTime).Seconds()
		if remaining < 0 {
			remaining = 0
		}
		status.AcceptanceTimeRemaining = &remaining
	}
	if ticket.EstimatedCompletion != nil && ticket.Status == models.TicketStatusInProgress {
		status.IsOverdue = now.After(*ticket.EstimatedCompletion)
	}

	return status, nil
}

// adjustLoads 原子调整机构和分队的当前负载
func (s *AssignmentService) adjustLoads(tx *gorm.DB, orgID, divisionID *uint, delta int) error {
	if orgID != nil {
		if err := tx.Model(&models.Organization{}).Where("id = ?", *orgID).
			UpdateColumn("current_load", gorm.Expr("current_load + ?", delta)).Error; err != nil {
			return fmt.Errorf("%w: adjust organization load: %v", ErrStorage, err)
		}
	}
	if divisionID != nil {
		if err := tx.Model(&models.Division{}).Where("id = ?", *divisionID).
			UpdateColumn("current_load", gorm.Expr("current_load + ?", delta)).Error; err != nil {
			return fmt.Errorf("%w: adjust division load: %v", ErrStorage, err)
		}
	}
	return nil
}

// markStaff 更新人员可用性和当前位置描述
func (s *AssignmentService) markStaff(tx *gorm.DB, staffID uint, availability, location string) error {
	updates := map[string]interface{}{"availability": availability}
	if location != "" {
		updates["current_location"] = location
	}
	if err := tx.Model(&models.Staff{}).Where("id = ?", staffID).Updates(updates).Error; err != nil {
		return fmt.Errorf("%w: update staff availability: %v", ErrStorage, err)
	}
	return nil
}
