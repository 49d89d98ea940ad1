package services

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"resq-http-service/config"
	"resq-http-service/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// 通知主题常量
const (
	// 分配提议通知主题
	TopicAssignmentProposal = "resq/assignment/proposal"

	// 升级告警主题
	TopicEscalation = "resq/assignment/escalation"

	// 运营广播主题
	TopicOperationsBroadcast = "resq/operations/broadcast"
)

// 消息结构体定义
type (
	// ProposalMessage 分配提议通知
	ProposalMessage struct {
		TicketID       uint   `json:"ticket_id"`
		OrganizationID uint   `json:"organization_id"`
		Category       string `json:"category"`
		Priority       int    `json:"priority"`
		Place          string `json:"place"`
		Deadline       int64  `json:"acceptance_deadline"` // Unix毫秒
		Timestamp      int64  `json:"timestamp"`
	}

	// EscalationMessage 升级告警
	EscalationMessage struct {
		TicketID      uint   `json:"ticket_id"`
		Priority      int    `json:"priority"`
		ReassignCount int    `json:"reassign_count"`
		Category      string `json:"category"`
		Place         string `json:"place"`
		Timestamp     int64  `json:"timestamp"`
	}

	// BroadcastMessage 运营广播消息
	BroadcastMessage struct {
		Type      string      `json:"type"`
		Level     string      `json:"level"` // info/warning/error
		Message   string      `json:"message"`
		Data      interface{} `json:"data,omitempty"`
		Timestamp int64       `json:"timestamp"`
	}
)

// InterfaceNotificationService 定义MQTT通知服务接口
type InterfaceNotificationService interface {
	AssignmentNotifier
	Connect() error
	Disconnect()
	PublishBroadcast(messageType, level, message string, data interface{}) error
}

// NotificationService 基于MQTT向运营侧推送分配提议、升级告警和广播
type NotificationService struct {
	Config         *config.Config
	Client         mqtt.Client
	IsConnected    bool
	connectedMutex sync.RWMutex // 保护IsConnected字段的读写
	PublishMutex   sync.Mutex   // 用于保护MQTT消息发布
}

// NewNotificationService 创建一个新的MQTT通知服务实现
func NewNotificationService(cfg *config.Config) InterfaceNotificationService {
	service := &NotificationService{
		Config:      cfg,
		IsConnected: false,
	}

	service.setupMQTTClient()

	return service
}

// setupMQTTClient 设置MQTT客户端
func (s *NotificationService) setupMQTTClient() {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.Config.MQTTBrokerURL)
	// 使用唯一的客户端ID，避免同一服务多实例冲突
	opts.SetClientID(fmt.Sprintf("%s-%s-%d", s.Config.MQTTClientID, uuid.New().String()[:8], time.Now().UnixNano()))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(time.Second * 30)
	opts.SetKeepAlive(time.Second * 60)
	opts.SetPingTimeout(time.Second * 10)
	opts.SetCleanSession(true)

	if s.Config.MQTTUsername != "" {
		opts.SetUsername(s.Config.MQTTUsername)
		opts.SetPassword(s.Config.MQTTPassword)
	}

	// 支持SSL连接
	if strings.HasPrefix(s.Config.MQTTBrokerURL, "ssl://") || strings.HasPrefix(s.Config.MQTTBrokerURL, "tls://") {
		config.Info("[MQTT] 使用TLS连接")
		opts.SetTLSConfig(&tls.Config{
			InsecureSkipVerify: true,
		})
	}

	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		config.Warning("[MQTT] 连接丢失: %v", err)
		s.connectedMutex.Lock()
		s.IsConnected = false
		s.connectedMutex.Unlock()
	})

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		config.Info("[MQTT] 成功连接到 %s", s.Config.MQTTBrokerURL)
		s.connectedMutex.Lock()
		s.IsConnected = true
		s.connectedMutex.Unlock()
	})

	s.Client = mqtt.NewClient(opts)
}

// Connect 连接到MQTT服务器，带有重试机制
func (s *NotificationService) Connect() error {
	s.connectedMutex.RLock()
	isConnected := s.IsConnected && s.Client.IsConnected()
	s.connectedMutex.RUnlock()

	if isConnected {
		return nil
	}

	// 指数退避重试: 1s, 2s, 4s, 8s, 16s
	maxRetries := 5
	var err error

	for i := 0; i < maxRetries; i++ {
		token := s.Client.Connect()
		if token.WaitTimeout(5*time.Second) && token.Error() == nil {
			s.connectedMutex.Lock()
			s.IsConnected = true
			s.connectedMutex.Unlock()
			return nil
		}

		err = token.Error()
		backoffTime := time.Duration(1<<uint(i)) * time.Second
		config.Warning("[MQTT] 连接尝试 %d/%d 失败: %v, 将在 %v 后重试", i+1, maxRetries, err, backoffTime)
		time.Sleep(backoffTime)
	}

	return fmt.Errorf("[MQTT] 连接失败，已尝试 %d 次: %v", maxRetries, err)
}

// Disconnect 断开与MQTT服务器的连接
func (s *NotificationService) Disconnect() {
	if s.Client != nil && s.Client.IsConnected() {
		s.Client.Disconnect(250)
	}
}

// NotifyProposal 向被提议的机构推送分配提议
func (s *NotificationService) NotifyProposal(ticket *models.EmergencyTicket, org *models.Organization, deadline time.Time) {
	msg := ProposalMessage{
		TicketID:       ticket.ID,
		OrganizationID: org.ID,
		Category:       ticket.Category,
		Priority:       ticket.Priority,
		Place:          ticket.Place,
		Deadline:       deadline.UnixMilli(),
		Timestamp:      time.Now().UnixMilli(),
	}
	if err := s.publishMessage(TopicAssignmentProposal, msg); err != nil {
		config.Error("[MQTT] 发送分配提议通知失败: %v", err)
	}
}

// NotifyEscalation 向运营侧推送升级告警
func (s *NotificationService) NotifyEscalation(ticket *models.EmergencyTicket) {
	msg := EscalationMessage{
		TicketID:      ticket.ID,
		Priority:      ticket.Priority,
		ReassignCount: ticket.ReassignCount,
		Category:      ticket.Category,
		Place:         ticket.Place,
		Timestamp:     time.Now().UnixMilli(),
	}
	if err := s.publishMessage(TopicEscalation, msg); err != nil {
		config.Error("[MQTT] 发送升级告警失败: %v", err)
	}
}

// PublishBroadcast 发布运营广播消息
func (s *NotificationService) PublishBroadcast(messageType, level, message string, data interface{}) error {
	msg := BroadcastMessage{
		Type:      messageType,
		Level:     level,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
	return s.publishMessage(TopicOperationsBroadcast, msg)
}

// publishMessage 发布消息到指定主题
func (s *NotificationService) publishMessage(topic string, payload interface{}) error {
	// 加锁保护发布过程，避免并发发布冲突
	s.PublishMutex.Lock()
	defer s.PublishMutex.Unlock()

	s.connectedMutex.RLock()
	isConnected := s.IsConnected && s.Client.IsConnected()
	s.connectedMutex.RUnlock()

	if !isConnected {
		config.Warning("[MQTT] 客户端未连接，尝试重新连接...")
		if err := s.Connect(); err != nil {
			return fmt.Errorf("MQTT客户端未连接: %v", err)
		}
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %v", err)
	}

	// 使用QoS 1确保消息至少被传递一次
	token := s.Client.Publish(topic, 1, false, jsonData)
	if !token.WaitTimeout(3 * time.Second) {
		return fmt.Errorf("发布消息超时")
	}
	if token.Error() != nil {
		return fmt.Errorf("发布消息失败: %v", token.Error())
	}

	config.Info("[MQTT] 已发布%T类型消息到主题: %s", payload, topic)
	return nil
}
