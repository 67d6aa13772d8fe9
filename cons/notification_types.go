package cons

// 通知类型（kind）
const (
	KindNewTaskAssigned   = "new-task-assigned"   // 任务指派
	KindNewChatMessage    = "new-chat-message"    // 任务聊天新消息
	KindTaskStatusChanged = "task-status-changed" // 任务状态变更
	KindTaskInfoChanged   = "task-info-changed"   // 任务信息修改
	KindTaskCompleted     = "task-completed"      // 任务完成
	KindDueSoon           = "due-soon"            // 临近截止提醒
	KindChatMention       = "chat-mention"        // 聊天 @提及
)

// WS 下行事件（server -> client）
const (
	EventUnreadCountUpdated = "unread_count_updated" // 未读数更新（个人通道）
	// EventNuevoMensajeChat 房间内新消息。事件名沿用旧前端的线上契约，勿改。
	EventNuevoMensajeChat = "nuevo_mensaje_chat"
)

// WS 上行事件（client -> server）
const (
	EventJoinTaskChatRoom    = "join_task_chat_room"
	EventLeaveTaskChatRoom   = "leave_task_chat_room"
	EventRequestInitialCount = "request_initial_counts"
)
