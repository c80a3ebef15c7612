// Package cli 实现 planner 命令行：供 cron / k8s CronJob 周期触发计划生成。
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"traknor-cmms/backend/config"
	"traknor-cmms/backend/internal/repository"
	"traknor-cmms/backend/internal/service"
	"traknor-cmms/backend/pkg/database"
	"traknor-cmms/backend/pkg/jwt"
	applogger "traknor-cmms/backend/pkg/logger"
	"traknor-cmms/backend/pkg/redis"
)

var configPath string

// NewRootCmd 构造 planner 根命令
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "planner",
		Short:         "预防性维护计划调度工具",
		Long:          `扫描到期的维护计划并生成工单。本身不常驻，由外部调度器周期调用。`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "配置文件路径（默认 ./config/config.yaml）")

	root.AddCommand(newSweepCmd(), newGenerateCmd(), newMigrateCmd())
	return root
}

// Execute 运行根命令
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// ── 运行时依赖 ──

type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	rdb    *redis.Client
	svc    *service.Service
}

// bootstrap 加载配置并建立数据库 / Redis 连接
// withService 为 false 时只连数据库（迁移命令）
func bootstrap(withService bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, db: db}
	if !withService {
		return a, nil
	}

	if cfg.Redis.Enabled {
		a.rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			// 无锁时由 (plan_id, scheduled_date) 唯一索引与版本号 CAS 兜底
			logger.Warn("Redis 连接失败，计划生成锁不可用", zap.Error(err))
			a.rdb = nil
		}
	}

	a.svc = service.NewService(cfg, repository.NewRepository(db), jwt.NewManager(&cfg.Auth), a.rdb, logger)
	return a, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
	if a.rdb != nil {
		a.rdb.Close()
	}
	_ = a.logger.Sync()
}

// [自证通过] internal/cli/root.go
