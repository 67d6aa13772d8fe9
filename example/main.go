package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	secplan "github.com/pelaocl/secplan-project-manager-sub000"
)

func main() {
	// 1. 初始化数据库连接
	dsn := "root:password@tcp(127.0.0.1:3306)/secplan_db?charset=utf8mb4&parseTime=True&loc=Local"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("数据库连接失败:", err)
	}

	// Redis：token 鉴权必需
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})

	// 2. 初始化 Engine（单例模式，全局只需调用一次）
	engine := secplan.NewEngine(
		secplan.WithDB(db),
		secplan.WithRDB(rdb),
		secplan.WithTablePrefix("sp_"),
		// 每天 09:00 扫描 3 天内到期的任务，给负责人发提醒
		secplan.WithDueSoonScan("0 9 * * *", 3),
	)

	// 字典初始数据（幂等，重复跑不会重复插）
	if err := engine.SeedLookups(); err != nil {
		log.Fatal("字典初始化失败:", err)
	}

	// 3. 创建 Gin 路由
	r := gin.Default()

	// 设置 CORS（如果需要）
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// 注册 Swagger UI
	secplan.RegisterSwagger(r, "/swagger/*any")

	// 4. WebSocket 连接路由
	// 客户端连接：ws://localhost:6789/ws?token=xxx（升级前先鉴权）
	r.GET("/ws", func(c *gin.Context) {
		engine.ServeWS(c.Writer, c.Request)
	})

	// 5. API 路由组
	api := r.Group("/api/v1")

	// 登录不需要 token
	api.POST("/auth/login", engine.GinHandleLogin)

	auth := api.Group("")
	auth.Use(engine.GinAuthMiddleware(nil))
	{
		auth.POST("/auth/logout", engine.GinHandleLogout)
		auth.GET("/auth/me", engine.GinHandleMe)

		// 用户模块
		auth.POST("/users", engine.GinHandleRegisterUser)
		auth.GET("/users", engine.GinHandleListUsers)
		auth.GET("/users/:id", engine.GinHandleGetUser)

		// 项目模块
		auth.POST("/projects", engine.GinHandleCreateProject)
		auth.GET("/projects", engine.GinHandleListProjects)
		auth.GET("/projects/:id", engine.GinHandleGetProject)
		auth.PUT("/projects/:id", engine.GinHandleUpdateProject)
		auth.DELETE("/projects/:id", engine.GinHandleDeleteProject)
		auth.GET("/projects/:id/tasks", engine.GinHandleListProjectTasks)

		// 任务模块
		auth.POST("/tasks", engine.GinHandleCreateTask)
		auth.GET("/tasks/:id", engine.GinHandleGetTask)
		auth.PUT("/tasks/:id", engine.GinHandleUpdateTask)

		// 任务聊天
		auth.GET("/tasks/:id/chat", engine.GinHandleListChatMessages)
		auth.POST("/tasks/:id/chat", engine.GinHandleSendChatMessage)
		auth.POST("/tasks/:id/chat/view", engine.GinHandleRecordChatView)
		auth.POST("/tasks/:id/chat/read", engine.GinHandleMarkTaskChatRead)

		// 通知模块
		auth.GET("/notifications", engine.GinHandleListNotifications)
		auth.POST("/notifications/:id/read", engine.GinHandleMarkNotificationRead)
		auth.POST("/notifications/read-all", engine.GinHandleMarkAllNotificationsRead)
		auth.GET("/notifications/unread-counts", engine.GinHandleUnreadCounts)

		// 字典与统计
		auth.GET("/lookups", engine.GinHandleLookups)
		auth.GET("/stats/dashboard", engine.GinHandleDashboard)
	}

	// 6. 启动服务器
	log.Println("SECPLAN Server 启动在 :6789")
	log.Println("Swagger UI: http://localhost:6789/swagger/index.html")
	log.Println("WebSocket 地址: ws://localhost:6789/ws?token=YOUR_TOKEN")
	if err := r.Run(":6789"); err != nil {
		log.Fatal("服务器启动失败:", err)
	}
}
