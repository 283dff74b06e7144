package main

import (
	"flag"
	"fmt"
	"os"
	"syscall"

	"github.com/bloodlink-next/internal/app"
	"github.com/bloodlink-next/internal/config"
	"github.com/bloodlink-next/internal/logger"
	"github.com/bloodlink-next/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiRed   = "\033[31m"
	ansiCyan  = "\033[36m"
)

func main() {
	printStartupBanner()

	// 加载配置
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	// 初始化数据库；缺配置或连接失败时不退出，降级为演示回退模式，
	// 容器里的守卫拿到 nil DB 会自动打开回退开关
	if cfg.Database.Unconfigured() {
		stdLog.Printf("警告: 数据库未配置，以演示回退模式启动，所有写入仅模拟成功")
	} else if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Printf("警告: 数据库连接失败，以演示回退模式启动: %v", err)
		models.DB = nil
	}

	if models.DB != nil {
		// 自动迁移数据库表
		if err := models.AutoMigrate(); err != nil {
			stdLog.Fatalf("数据库迁移失败: %v", err)
		}

		// 初始化默认医院与默认管理员账号
		defaultAdminUser := os.Getenv("BL_DEFAULT_ADMIN_USERNAME")
		defaultAdminPass := os.Getenv("BL_DEFAULT_ADMIN_PASSWORD")
		if cfg.Server.Mode == "release" && defaultAdminPass == "" {
			stdLog.Printf("警告: 未设置 BL_DEFAULT_ADMIN_PASSWORD，已跳过默认管理员初始化")
		} else if err := models.InitDefaults(defaultAdminUser, defaultAdminPass); err != nil {
			stdLog.Printf("警告: 初始化默认账号失败: %v", err)
		}
	}

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 解析命令行参数
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

func printStartupBanner() {
	fmt.Println(ansiRed + "██████╗ ██╗      ██████╗  ██████╗ ██████╗ ██╗     ██╗███╗   ██╗██╗  ██╗" + ansiReset)
	fmt.Println(ansiRed + "██╔══██╗██║     ██╔═══██╗██╔═══██╗██╔══██╗██║     ██║████╗  ██║██║ ██╔╝" + ansiReset)
	fmt.Println(ansiRed + "██████╔╝██║     ██║   ██║██║   ██║██║  ██║██║     ██║██╔██╗ ██║█████╔╝ " + ansiReset)
	fmt.Println(ansiRed + "██╔══██╗██║     ██║   ██║██║   ██║██║  ██║██║     ██║██║╚██╗██║██╔═██╗ " + ansiReset)
	fmt.Println(ansiRed + "██████╔╝███████╗╚██████╔╝╚██████╔╝██████╔╝███████╗██║██║ ╚████║██║  ██╗" + ansiReset)
	fmt.Println(ansiRed + "╚═════╝ ╚══════╝ ╚═════╝  ╚═════╝ ╚═════╝ ╚══════╝╚═╝╚═╝  ╚═══╝╚═╝  ╚═╝" + ansiReset)
	fmt.Println(ansiCyan + ansiBold + "BloodLink-Next 血液成分库存与调拨引擎" + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}
