package main

import (
	"context"
	"flag"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ParkEasy/ParkEasy/internal/booking"
	"github.com/ParkEasy/ParkEasy/internal/common/config"
	"github.com/ParkEasy/ParkEasy/internal/common/db"
	"github.com/ParkEasy/ParkEasy/internal/common/logger"
	"github.com/ParkEasy/ParkEasy/internal/common/middleware"
	"github.com/ParkEasy/ParkEasy/internal/common/server"
	"github.com/ParkEasy/ParkEasy/internal/common/tracing"
	"github.com/ParkEasy/ParkEasy/internal/lot"
	"github.com/ParkEasy/ParkEasy/internal/relay"
	"github.com/ParkEasy/ParkEasy/internal/user"
)

func main() {
	configPath := flag.String("config", "configs/parking-service.json", "配置文件路径")
	consulKVKey := flag.String("config-consul-key", "", "从 Consul KV 读取配置的 key（设置后优先于 -config）")
	consulAddr := flag.String("consul-addr", "localhost", "读取配置用的 Consul 地址")
	consulPort := flag.Int("consul-port", 8500, "读取配置用的 Consul 端口")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *consulKVKey != "" {
		cfg, err = config.LoadConfigFromConsulKV(*consulAddr, *consulPort, *consulKVKey)
	} else {
		cfg, err = config.LoadConfig(*configPath)
	}
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		logrus.Fatalf("Failed to create logger: %v", err)
	}

	// 链路追踪
	_, closer, err := tracing.InitTracer(cfg.Server.Name, cfg.Jaeger.Endpoint, cfg.Jaeger.Sampler)
	if err != nil {
		log.Warnf("Failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}

	// 数据库
	gormDB, err := db.NewMySQL(
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.User, cfg.Database.Password, cfg.Database.Database,
		cfg.Database.MaxIdle, cfg.Database.MaxOpen, cfg.Database.LockWaitSeconds,
	)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&user.User{},
		&lot.ParkingLot{},
		&lot.Slot{},
		&booking.Booking{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 事件广播：进程内 websocket 房间，外加可选的 AMQP topic exchange
	hub := relay.NewHub(log)
	go hub.Run()

	publishers := relay.Fanout{hub}
	if cfg.AMQP.Enabled {
		amqpPub, err := relay.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, log)
		if err != nil {
			log.Warnf("Failed to connect AMQP, events stay in-process only: %v", err)
		} else {
			defer amqpPub.Close()
			publishers = append(publishers, amqpPub)
		}
	}

	// 组装各域
	userRepo := user.NewRepo(gormDB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHTTPHandler(userSvc, cfg.Auth)

	lotRepo := lot.NewRepo(gormDB)
	lotHandler := lot.NewHTTPHandler(lotRepo)

	bookingRepo := booking.NewRepo(gormDB)
	engine := booking.NewEngine(bookingRepo, cfg.Auth, cfg.Booking, publishers, log)
	lifecycle := booking.NewLifecycle(bookingRepo, cfg.Auth, publishers, log)
	bookingHandler := booking.NewHTTPHandler(engine, lifecycle, bookingRepo)

	// 后台清扫：过期未入场的取消，超时未离场的完结
	sweeper := booking.NewSweeper(bookingRepo, lifecycle, cfg.Booking.SweepInterval(), log)
	go sweeper.Run(ctx)

	// 预约创建接口单独限流，保护行锁热点
	reserveLimiter := middleware.NewSlidingWindow(time.Minute, 120)

	err = server.RunHTTPServer(cfg, log, func(r *gin.Engine) error {
		// 公开接口
		r.POST("/api/auth/session", userHandler.CreateSession)
		r.GET("/api/lots", lotHandler.ListLots)
		r.GET("/api/lots/:lotId/slots", lotHandler.ListSlots)
		r.GET("/ws", hub.ServeWS)

		// 登录接口
		api := r.Group("/api", server.JWTAuth(cfg.Auth, log))
		{
			api.GET("/users/me", userHandler.Me)

			api.POST("/bookings", middleware.GinRateLimit(reserveLimiter), bookingHandler.Reserve)
			api.GET("/bookings", bookingHandler.ListMine)
			api.GET("/bookings/qr", bookingHandler.FromQR)
			api.GET("/bookings/:bookingId", bookingHandler.Get)
			api.PATCH("/bookings/:bookingId/cancel", bookingHandler.Cancel)
			api.POST("/checkin", bookingHandler.CheckIn)
		}

		// 运营后台
		admin := r.Group("/api/admin", server.JWTAuth(cfg.Auth, log), server.RequireRole(user.RoleOperator))
		{
			admin.GET("/bookings", bookingHandler.ListAll)
			admin.PATCH("/bookings/:bookingId/approve", bookingHandler.Approve)
			admin.PATCH("/bookings/:bookingId/decline", bookingHandler.Decline)
			admin.PATCH("/bookings/:bookingId/complete", bookingHandler.Complete)

			admin.POST("/lots", lotHandler.CreateLot)
			admin.PATCH("/lots/:lotId", lotHandler.UpdateLot)
			admin.DELETE("/lots/:lotId", lotHandler.DeleteLot)
			admin.POST("/slots", lotHandler.CreateSlot)
			admin.PATCH("/slots/:slotId", lotHandler.UpdateSlot)
			admin.DELETE("/slots/:slotId", lotHandler.DeleteSlot)
			admin.GET("/analytics", lotHandler.Analytics)

			admin.PATCH("/users/:userId/role", userHandler.SetRole)
		}
		return nil
	}, server.WithShutdownTimeout(10*time.Second))
	if err != nil {
		log.Fatalf("Failed to run http server: %v", err)
	}
}
