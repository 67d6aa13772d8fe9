package secplan

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time 写入超时时间
	writeWait = 10 * time.Second

	// Time pong超时时间
	pongWait = 60 * time.Second

	// Send 对应的ping 必须小于pong
	pingPeriod = (pongWait * 9) / 10

	// Maximum 对等端允许消息大小
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 前后端分离部署，origin 由反代控制
	},
}

// Client 一条具体的 websocket 连接。
// 同一用户可以多端在线；房间成员关系挂在连接上，不挂在用户上
// （两个标签页可以分别待在不同任务的聊天室里）。
type Client struct {
	hub *WsServer

	conn *websocket.Conn

	// 消息缓冲区；写满直接丢弃（at-most-once，不重试不补发）
	send chan []byte

	// UserID 和用户关联（建连时已通过 token 鉴权）
	UserID uint64

	Name string
}

// readPump 将消息从 client (websocket 连接) 到 hub 管理。
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { _ = c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("readPump error: %v", err)
			}
			break
		}
		c.hub.handleMessage(c, msg)
	}
}

// writePump 将消息从 hub 管理写到具体的 client (websocket 连接)。
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(msg)

			// 管道里攒下的消息一次写完，减少 syscall
			n := len(c.send)
			for i := 0; i < n; i++ {
				_, _ = w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// WsServer 连接注册表 + 房间注册表。
// 两张表都只在 connect/disconnect/join/leave 时写、广播时读；
// registry 归 hub 独占，service 层只通过 SendToUser/BroadcastToRoom 进来。
type WsServer struct {
	clients map[*Client]bool
	// 用户ID -> 该用户所有活跃连接（支持多端）
	userClients map[uint64][]*Client

	// 任务聊天室：taskID -> 已 join 的连接集合。
	// 房间成员关系不影响个人通道（未读数推送对全部连接生效）。
	rooms map[uint64]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	// 回调处理上行消息（engine 注入：join/leave/request_initial_counts）
	onMessage func(client *Client, msg []byte)

	// 回调：连接注册完成后调用（engine 注入：推建连时未读数）
	onConnect func(client *Client)
}

func NewWsServer() *WsServer {
	return &WsServer{
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		clients:     make(map[*Client]bool),
		userClients: make(map[uint64][]*Client),
		rooms:       make(map[uint64]map[*Client]bool),
	}
}

func (h *WsServer) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
			h.mu.Unlock()

			// onConnect 里有 DB IO（算未读数），不能阻塞 hub 主循环
			if h.onConnect != nil {
				go h.onConnect(client)
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)

				if userConns, exists := h.userClients[client.UserID]; exists {
					for i, conn := range userConns {
						if conn == client {
							h.userClients[client.UserID] = append(userConns[:i], userConns[i+1:]...)
							break
						}
					}
					if len(h.userClients[client.UserID]) == 0 {
						delete(h.userClients, client.UserID)
					}
				}

				// 断连即退出全部房间
				for taskID, members := range h.rooms {
					if members[client] {
						delete(members, client)
						if len(members) == 0 {
							delete(h.rooms, taskID)
						}
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *WsServer) handleMessage(client *Client, msg []byte) {
	if h.onMessage != nil {
		h.onMessage(client, msg)
	}
}

func (h *WsServer) SetOnMessage(fn func(client *Client, msg []byte)) {
	h.onMessage = fn
}

func (h *WsServer) SetOnConnect(fn func(client *Client)) {
	h.onConnect = fn
}

// ServeWS 处理 ws 的请求。鉴权由调用方完成（engine 在 upgrade 前校验 token）。
func (h *WsServer) ServeWS(w http.ResponseWriter, r *http.Request, userID uint64, name string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		UserID: userID,
		Name:   name,
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// JoinRoom 把连接加入任务聊天室
func (h *WsServer) JoinRoom(client *Client, taskID uint64) {
	if client == nil || taskID == 0 {
		return
	}
	h.mu.Lock()
	members := h.rooms[taskID]
	if members == nil {
		members = make(map[*Client]bool)
		h.rooms[taskID] = members
	}
	members[client] = true
	h.mu.Unlock()
}

// LeaveRoom 把连接移出任务聊天室；不影响个人通道
func (h *WsServer) LeaveRoom(client *Client, taskID uint64) {
	if client == nil || taskID == 0 {
		return
	}
	h.mu.Lock()
	if members, ok := h.rooms[taskID]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, taskID)
		}
	}
	h.mu.Unlock()
}

// SendToUser 发送消息到用户全部在线连接（个人通道）。
// 投递在读锁内完成：unregister 的 close(send) 持写锁，两者不会交错。
// send 非阻塞（满了就丢），持锁不会卡住 hub。
func (h *WsServer) SendToUser(userID uint64, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.userClients[userID] {
		select {
		case client.send <- msg:
		default:
			// 丢弃避免阻塞；断开的端重连时会重新拉取
		}
	}
}

// BroadcastToRoom 向任务聊天室广播（只发给已 join 的连接）
func (h *WsServer) BroadcastToRoom(taskID uint64, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[taskID] {
		select {
		case client.send <- msg:
		default:
		}
	}
}

// sendToClient 向单个连接投递。读锁内先确认连接还在注册表里，
// 已 unregister 的连接 send 已关闭，直接丢弃。
func (h *WsServer) sendToClient(client *Client, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.clients[client] {
		return
	}
	select {
	case client.send <- msg:
	default:
	}
}
