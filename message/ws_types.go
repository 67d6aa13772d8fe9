package message

// WS 上行消息：统一用 type 字段区分，payload 平铺。
// 房间加入/离开只影响 nuevo_mensaje_chat 的投递，不影响个人通道的未读数推送。
type ClientReq struct {
	Type     string `json:"type"`                // join_task_chat_room / leave_task_chat_room / request_initial_counts
	TaskID   uint64 `json:"task_id,omitempty"`   // join/leave 必填
	PacketID string `json:"packet_id,omitempty"` // 可选：客户端匹配 ack
}

// UnreadCountPush 未读数推送（建连时必发一次，之后每次通知变更后发）
type UnreadCountPush struct {
	Type        string `json:"type"` // unread_count_updated
	SystemCount int64  `json:"system_count"`
	ChatCount   int64  `json:"chat_count"`
}

// ChatMessagePush 房间内新消息推送
type ChatMessagePush struct {
	Type            string  `json:"type"` // nuevo_mensaje_chat
	ID              uint64  `json:"id"`
	TaskID          uint64  `json:"task_id"`
	SenderID        uint64  `json:"sender_id"`
	SenderName      string  `json:"sender_name"`
	ParentMessageID *uint64 `json:"parent_message_id,omitempty"`
	Content         string  `json:"content"`
	SentAt          string  `json:"sent_at"` // RFC3339
}

// NotificationPush 单条通知推送（个人通道）
type NotificationPush struct {
	Type       string  `json:"type"` // notification
	ID         uint64  `json:"id"`
	Category   string  `json:"category"`
	Kind       string  `json:"kind"`
	Message    string  `json:"message"`
	TargetURL  string  `json:"target_url,omitempty"`
	ResourceID *uint64 `json:"resource_id,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

const (
	PushTypeNotification = "notification"
)
