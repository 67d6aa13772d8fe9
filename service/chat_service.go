package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/pelaocl/secplan-project-manager-sub000/cons"
	"github.com/pelaocl/secplan-project-manager-sub000/message"
	"github.com/pelaocl/secplan-project-manager-sub000/models"
	"github.com/pelaocl/secplan-project-manager-sub000/repository"
	"gorm.io/gorm"
)

// ChatService 任务聊天
// 消息写入是主流程；房间广播和通知落库都是辅助效果，
// 失败只记日志，绝不让消息发送本身失败。
type ChatService struct {
	*Service
}

func NewChatService(s *Service) *ChatService {
	return &ChatService{Service: s}
}

// mentionRe 提取 @用户名（字母数字下划线点，2~50 位）
var mentionRe = regexp.MustCompile(`@([A-Za-z0-9_.]{2,50})`)

// ParseMentions 从消息文本里提取被 @ 的用户名（去重，保持出现顺序）。
func ParseMentions(content string) []string {
	matches := mentionRe.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// SaveMessage 保存一条任务聊天消息并触发广播/通知。
// 任务不存在返回 ErrNotFound；parentID 必须属于同一任务。
func (s *ChatService) SaveMessage(taskID, senderID uint64, content string, parentID *uint64) (*models.TaskChatMessage, error) {
	if taskID == 0 || senderID == 0 {
		return nil, errors.New("task_id and sender_id are required")
	}
	if content == "" {
		return nil, errors.New("content is required")
	}

	var task models.Task
	if err := s.DB.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	dao := repository.NewChatMessageDAO(s.DB)
	if parentID != nil {
		parent, err := dao.GetByID(*parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if parent.TaskID != taskID {
			return nil, errors.New("parent message belongs to another task")
		}
	}

	msg := &models.TaskChatMessage{
		TaskID:          taskID,
		SenderID:        senderID,
		ParentMessageID: parentID,
		Content:         content,
		SentAt:          time.Now(),
	}
	if err := dao.Create(msg); err != nil {
		return nil, err
	}

	// 以下全部尽力而为
	s.broadcastMessage(msg)
	s.fanOutNotifications(&task, msg)

	return msg, nil
}

// ListMessages 取任务聊天记录（sent_at 升序，平局按 id）。
func (s *ChatService) ListMessages(taskID uint64, limit int) ([]models.TaskChatMessage, error) {
	if taskID == 0 {
		return nil, errors.New("task_id is required")
	}
	return repository.NewChatMessageDAO(s.DB).ListByTask(taskID, limit)
}

// broadcastMessage 向任务聊天室广播新消息（只到已 join 的连接）。
func (s *ChatService) broadcastMessage(msg *models.TaskChatMessage) {
	if s.RoomBroadcaster == nil {
		return
	}

	senderName := ""
	var sender models.User
	if err := s.DB.Select("name").First(&sender, msg.SenderID).Error; err == nil {
		senderName = sender.Name
	}

	b, err := json.Marshal(message.ChatMessagePush{
		Type:            cons.EventNuevoMensajeChat,
		ID:              msg.ID,
		TaskID:          msg.TaskID,
		SenderID:        msg.SenderID,
		SenderName:      senderName,
		ParentMessageID: msg.ParentMessageID,
		Content:         msg.Content,
		SentAt:          msg.SentAt.Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	s.RoomBroadcaster(msg.TaskID, b)
}

// fanOutNotifications 给任务相关人落 CHAT 通知：
// - 被 @ 的用户：chat-mention
// - 负责人/创建者（去重，排除发送者和已 @ 的人）：new-chat-message
// 通知失败只记日志，不影响消息写入。
func (s *ChatService) fanOutNotifications(task *models.Task, msg *models.TaskChatMessage) {
	if s.Notify == nil {
		return
	}

	targetURL := fmt.Sprintf("/proyectos/%d/tareas/%d/chat", task.ProjectID, task.ID)
	notified := map[uint64]struct{}{msg.SenderID: {}}

	// @提及
	if names := ParseMentions(msg.Content); len(names) != 0 {
		var mentioned []models.User
		if err := s.DB.Where("username IN ?", names).Find(&mentioned).Error; err != nil {
			log.Printf("mention lookup failed task=%d: %v", task.ID, err)
		} else {
			for _, u := range mentioned {
				if _, ok := notified[u.ID]; ok {
					continue
				}
				notified[u.ID] = struct{}{}
				s.createChatNotification(u.ID, cons.KindChatMention,
					fmt.Sprintf("Te mencionaron en la tarea «%s»", task.Title), targetURL, msg.ID)
			}
		}
	}

	// 任务相关人
	for _, uid := range taskParticipants(task) {
		if _, ok := notified[uid]; ok {
			continue
		}
		notified[uid] = struct{}{}
		s.createChatNotification(uid, cons.KindNewChatMessage,
			fmt.Sprintf("Nuevo mensaje en la tarea «%s»", task.Title), targetURL, msg.ID)
	}
}

func (s *ChatService) createChatNotification(recipientID uint64, kind, text, targetURL string, msgID uint64) {
	_, err := s.Notify.Create(CreateInput{
		RecipientID:  recipientID,
		Category:     models.NotificationCategoryChat,
		Kind:         kind,
		Message:      text,
		TargetURL:    targetURL,
		ResourceKind: models.ResourceKindMessage,
		ResourceID:   &msgID,
	})
	if err != nil {
		log.Printf("chat notification failed recipient=%d msg=%d: %v", recipientID, msgID, err)
	}
}

// taskParticipants 任务的通知相关人：负责人 + 创建者（去重）。
func taskParticipants(task *models.Task) []uint64 {
	out := make([]uint64, 0, 2)
	if task.AssigneeID != nil && *task.AssigneeID != 0 {
		out = append(out, *task.AssigneeID)
	}
	if task.CreatorID != 0 && (task.AssigneeID == nil || *task.AssigneeID != task.CreatorID) {
		out = append(out, task.CreatorID)
	}
	return out
}
