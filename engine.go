package secplan

import (
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/pelaocl/secplan-project-manager-sub000/middleware"
	"github.com/pelaocl/secplan-project-manager-sub000/service"
)

// Engine 应用实例：服务聚合 + WS hub + 定时任务。
type Engine struct {
	config *Config

	UserService         *service.UserService
	ProjectService      *service.ProjectService
	TaskService         *service.TaskService
	ChatService         *service.ChatService
	NotificationService *service.NotificationService
	UnreadService       *service.UnreadService
	ReadCursorService   *service.ReadCursorService
	LookupService       *service.LookupService
	StatsService        *service.StatsService
	DueSoonService      *service.DueSoonService
	AuthService         *service.AuthService

	WsServer *WsServer
	cron     *cron.Cron
}

var (
	Instance *Engine
	once     sync.Once
)

// NewEngine 创建实例
// 使用选项模式传入配置，Option回调
func NewEngine(opts ...Option) *Engine {
	once.Do(func() {
		c := &Config{
			TablePrefix: "sp_", // Default
		}
		for _, opt := range opts {
			opt(c)
		}

		Instance = &Engine{config: c}

		// 初始化 WS
		Instance.WsServer = NewWsServer()
		go Instance.WsServer.Run()

		// 初始化基础 Service，注入推送回调
		base := &service.Service{
			DB:              c.DB,
			RDB:             c.RDB,
			TablePrefix:     c.TablePrefix,
			WsNotifier:      Instance.WsServer.SendToUser,
			RoomBroadcaster: Instance.WsServer.BroadcastToRoom,
		}

		// 核心服务先装好再互相引用
		base.Unread = service.NewUnreadService(base)
		base.Notify = service.NewNotificationService(base)
		base.ReadCursor = service.NewReadCursorService(base)

		Instance.UnreadService = base.Unread
		Instance.NotificationService = base.Notify
		Instance.ReadCursorService = base.ReadCursor

		Instance.UserService = service.NewUserService(base)
		Instance.ProjectService = service.NewProjectService(base)
		Instance.TaskService = service.NewTaskService(base)
		Instance.ChatService = service.NewChatService(base)
		Instance.LookupService = service.NewLookupService(base)
		Instance.StatsService = service.NewStatsService(base)
		Instance.DueSoonService = service.NewDueSoonService(base)
		if c.DueSoonDays > 0 {
			Instance.DueSoonService.WithinDays = c.DueSoonDays
		}
		Instance.AuthService = service.NewAuthService(c.RDB)

		// 迁移表
		if err := Instance.AutoMigrate(); err != nil {
			log.Printf("AutoMigrate failed: %v", err)
		}

		Instance.bindWsHandlers()

		// 临近截止扫描（可选）
		if c.DueSoonCronSpec != "" {
			Instance.cron = cron.New()
			_, err := Instance.cron.AddFunc(c.DueSoonCronSpec, func() {
				n, err := Instance.DueSoonService.ScanAndNotify()
				if err != nil {
					log.Printf("due-soon scan failed: %v", err)
					return
				}
				if n > 0 {
					log.Printf("due-soon scan created %d notifications", n)
				}
			})
			if err != nil {
				log.Printf("invalid due-soon cron spec %q: %v", c.DueSoonCronSpec, err)
			} else {
				Instance.cron.Start()
			}
		}
	})

	return Instance
}

// ServeWS 处理 WebSocket 升级。先鉴权：token 无效直接 401，
// 不建立连接、不产生任何状态（连接失败即失败，无半开状态）。
func (e *Engine) ServeWS(w http.ResponseWriter, r *http.Request) {
	uid, _, err := e.AuthService.AuthenticateRequest(r.Context(), r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	name := ""
	if u, err := e.UserService.GetUser(uid); err == nil && u != nil {
		name = u.Name
	}
	e.WsServer.ServeWS(w, r, uid, name)
}

// GinAuthMiddleware 返回配置好的 Gin 鉴权中间件
//
// 使用示例:
//
//	engine := secplan.NewEngine(...)
//	r := gin.Default()
//	r.Use(engine.GinAuthMiddleware(nil))
func (e *Engine) GinAuthMiddleware(opt *middleware.AuthOptions) gin.HandlerFunc {
	return middleware.GinAuthMiddleware(e.AuthService, opt)
}

// StopCron 停止定时任务（测试/优雅退出用）
func (e *Engine) StopCron() {
	if e.cron != nil {
		e.cron.Stop()
	}
}
