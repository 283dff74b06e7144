package provider

import (
	"github.com/bloodlink-next/internal/authz"
	"github.com/bloodlink-next/internal/cache"
	"github.com/bloodlink-next/internal/config"
	"github.com/bloodlink-next/internal/logger"
	"github.com/bloodlink-next/internal/models"
	"github.com/bloodlink-next/internal/queue"
	"github.com/bloodlink-next/internal/repository"
	"github.com/bloodlink-next/internal/service"
	"github.com/bloodlink-next/internal/store"
)

// Container 依赖注入容器
type Container struct {
	Cfg         *config.Config
	Guard       *store.Guard
	QueueClient *queue.Client

	// Repositories
	AdminRepo     repository.AdminRepository
	HospitalRepo  repository.HospitalRepository
	SessionRepo   repository.SessionRepository
	InventoryRepo repository.InventoryRepository
	TransferRepo  repository.TransferRepository

	// Services
	AuthzService     *authz.Service
	AuthService      *service.AuthService
	CaptchaService   *service.CaptchaService
	InventoryService *service.InventoryService
	SurplusService   *service.SurplusService
	HospitalService  *service.HospitalService
	AdminService     *service.AdminService
}

// NewContainer 初始化容器
// models.DB 为 nil 时守卫自动进入回退模式，整条服务链走演示数据
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Cfg:         cfg,
		Guard:       store.NewGuard(models.DB, cfg.Store.ToGuardConfig()),
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	c.AdminRepo = repository.NewAdminRepository(c.Guard)
	c.HospitalRepo = repository.NewHospitalRepository(c.Guard)
	c.SessionRepo = repository.NewSessionRepository(c.Guard)
	c.InventoryRepo = repository.NewInventoryRepository(c.Guard)
	c.TransferRepo = repository.NewTransferRepository(c.Guard)
}

func (c *Container) initServices() {
	// 回退模式下没有数据库，RBAC 跳过初始化，鉴权由会话层的演示身份兜底
	if !c.Guard.FallbackMode() && models.DB != nil {
		authzService, err := authz.NewService(models.DB)
		if err != nil {
			logger.Errorw("provider_init_authz_failed", "error", err)
			panic(err)
		}
		c.AuthzService = authzService
		if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
			logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
			panic(err)
		}
	}

	c.CaptchaService = service.NewCaptchaService(c.Cfg.Captcha)
	c.AuthService = service.NewAuthService(c.Cfg, c.Guard, c.AdminRepo, c.SessionRepo)
	c.InventoryService = service.NewInventoryService(c.Cfg, c.Guard, c.InventoryRepo)
	c.SurplusService = service.NewSurplusService(c.Cfg, c.Guard, c.InventoryRepo, c.HospitalRepo, c.TransferRepo)
	c.HospitalService = service.NewHospitalService(c.Guard, c.HospitalRepo)
	c.AdminService = service.NewAdminService(c.Guard, c.AdminRepo, c.HospitalRepo, c.AuthService)
}
