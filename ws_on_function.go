package secplan

import (
	"encoding/json"
	"log"

	"github.com/pelaocl/secplan-project-manager-sub000/cons"
	"github.com/pelaocl/secplan-project-manager-sub000/message"
)

// bindWsHandlers 将 WS 回调从 engine.go 抽出来，避免 engine.go 臃肿。
// 放在包根目录（同 WsServer/engine.go 同级），可以直接访问 Client 类型，
// 避免 service 层循环依赖。
func (e *Engine) bindWsHandlers() {
	// 建连即推一次当前未读数：离线期间漏掉的推送靠这一下对齐
	e.WsServer.SetOnConnect(func(client *Client) {
		e.pushInitialCounts(client)
	})

	e.WsServer.SetOnMessage(func(client *Client, msg []byte) {
		var req message.ClientReq
		if err := json.Unmarshal(msg, &req); err != nil {
			log.Printf("invalid ws message from user=%d: %v", client.UserID, err)
			return
		}

		switch req.Type {
		case cons.EventJoinTaskChatRoom:
			if req.TaskID == 0 {
				return
			}
			e.WsServer.JoinRoom(client, req.TaskID)

		case cons.EventLeaveTaskChatRoom:
			if req.TaskID == 0 {
				return
			}
			e.WsServer.LeaveRoom(client, req.TaskID)

		case cons.EventRequestInitialCount:
			e.pushInitialCounts(client)

		default:
			// 未知类型直接忽略（向前兼容旧前端）
		}
	})
}

// pushInitialCounts 现算未读数推给单个连接（不是整个用户，避免
// 其他端收到重复推送）。
func (e *Engine) pushInitialCounts(client *Client) {
	counts, err := e.UnreadService.ComputeCounts(client.UserID)
	if err != nil {
		log.Printf("initial counts failed user=%d: %v", client.UserID, err)
		return
	}

	b, err := json.Marshal(message.UnreadCountPush{
		Type:        cons.EventUnreadCountUpdated,
		SystemCount: counts.SystemCount,
		ChatCount:   counts.ChatCount,
	})
	if err != nil {
		return
	}
	e.WsServer.sendToClient(client, b)
}
