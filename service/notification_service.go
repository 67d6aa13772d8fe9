package service

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/pelaocl/secplan-project-manager-sub000/message"
	"github.com/pelaocl/secplan-project-manager-sub000/models"
	"github.com/pelaocl/secplan-project-manager-sub000/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationService 通知记录的统一入口
// 约定：先落库，落库成功后同步重算未读数并尽力 WS 推送；
// 推送失败不影响主流程，离线端重连/拉列表时自然补齐。
type NotificationService struct {
	*Service
}

func NewNotificationService(s *Service) *NotificationService {
	return &NotificationService{Service: s}
}

// CreateInput 创建通知的参数
type CreateInput struct {
	RecipientID  uint64
	Category     string // models.NotificationCategorySystem / Chat
	Kind         string // cons.Kind*
	Message      string
	TargetURL    string
	ResourceKind string
	ResourceID   *uint64
	Payload      any // 可选附加数据，JSON 序列化入库
}

// Create 创建一条通知并触发未读数重算 + 推送。
// 接收者不存在返回 ErrNotFound；其余字段不做业务校验（调用方保证）。
func (s *NotificationService) Create(in CreateInput) (*models.Notification, error) {
	if in.RecipientID == 0 {
		return nil, errors.New("recipient_id is required")
	}
	if in.Category != models.NotificationCategorySystem && in.Category != models.NotificationCategoryChat {
		return nil, errors.New("invalid category")
	}
	if in.Kind == "" {
		return nil, errors.New("kind is required")
	}

	var cnt int64
	if err := s.DB.Model(&models.User{}).Where("id = ?", in.RecipientID).Count(&cnt).Error; err != nil {
		return nil, err
	}
	if cnt == 0 {
		return nil, ErrNotFound
	}

	var pl datatypes.JSON
	if in.Payload != nil {
		b, err := json.Marshal(in.Payload)
		if err != nil {
			return nil, err
		}
		pl = b
	}

	n := &models.Notification{
		RecipientID:  in.RecipientID,
		Category:     in.Category,
		Kind:         in.Kind,
		Message:      in.Message,
		TargetURL:    in.TargetURL,
		ResourceKind: in.ResourceKind,
		ResourceID:   in.ResourceID,
		Payload:      pl,
		CreatedAt:    time.Now(),
	}
	if err := repository.NewNotificationDAO(s.DB).Create(n); err != nil {
		return nil, err
	}

	s.pushRecord(n)
	s.Unread.RecomputeAndPush(in.RecipientID)

	return n, nil
}

// pushRecord 把单条通知推到接收者的个人通道（尽力而为）。
func (s *NotificationService) pushRecord(n *models.Notification) {
	if s.WsNotifier == nil || n == nil {
		return
	}

	b, err := json.Marshal(message.NotificationPush{
		Type:       message.PushTypeNotification,
		ID:         n.ID,
		Category:   n.Category,
		Kind:       n.Kind,
		Message:    n.Message,
		TargetURL:  n.TargetURL,
		ResourceID: n.ResourceID,
		CreatedAt:  n.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	s.WsNotifier(n.RecipientID, b)
}

// ListForUser 拉取用户通知（id 倒序）。
// category 为空不过滤；limit<=0 用默认 10（前端铃铛下拉只展示最近若干条）。
func (s *NotificationService) ListForUser(userID uint64, onlyUnread bool, category string, limit int) ([]models.Notification, error) {
	if userID == 0 {
		return nil, errors.New("user_id is required")
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 200 {
		limit = 200
	}
	return repository.NewNotificationDAO(s.DB).ListByRecipient(userID, onlyUnread, category, limit)
}

// MarkRead 单条置已读。
// - 非本人的通知：ErrForbidden，状态不变。
// - 已读的通知：no-op，原样返回（幂等）。
func (s *NotificationService) MarkRead(notificationID, requestingUserID uint64) (*models.Notification, error) {
	dao := repository.NewNotificationDAO(s.DB)

	n, err := dao.GetByID(notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if n.RecipientID != requestingUserID {
		return nil, ErrForbidden
	}
	if n.IsRead {
		return n, nil
	}

	now := time.Now()
	affected, err := dao.MarkRead(notificationID, now)
	if err != nil {
		return nil, err
	}
	if affected > 0 {
		n.IsRead = true
		n.ReadAt = &now
		s.Unread.RecomputeAndPush(requestingUserID)
	}
	return n, nil
}

// MarkAllRead 批量置已读，category 为空表示全分类。返回转为已读的条数（可为 0）。
func (s *NotificationService) MarkAllRead(userID uint64, category string) (int64, error) {
	if userID == 0 {
		return 0, errors.New("user_id is required")
	}

	affected, err := repository.NewNotificationDAO(s.DB).MarkAllRead(userID, category, time.Now())
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		s.Unread.RecomputeAndPush(userID)
	}
	return affected, nil
}

// MarkAllReadForTaskChat 将某任务聊天产生的 CHAT 通知全部置已读。
// 注意：不动已读游标（游标管聊天分隔线，本方法管铃铛角标，两者独立）。
func (s *NotificationService) MarkAllReadForTaskChat(userID, taskID uint64) (int64, error) {
	if userID == 0 || taskID == 0 {
		return 0, errors.New("user_id and task_id are required")
	}

	affected, err := repository.NewNotificationDAO(s.DB).MarkAllReadForTaskChat(userID, taskID, time.Now())
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		s.Unread.RecomputeAndPush(userID)
	}
	return affected, nil
}
