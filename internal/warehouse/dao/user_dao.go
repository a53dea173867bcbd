package dao

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/warehouse-management/warehouse/internal/application/components/gormdb"
	"github.com/warehouse-management/warehouse/internal/application/core"
	bizConsts "github.com/warehouse-management/warehouse/internal/warehouse/consts"
	"github.com/warehouse-management/warehouse/internal/warehouse/model"
)

type UserDao interface {
	core.Component

	Create(ctx context.Context, u *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// Exists reports whether the username or the email is already used.
	Exists(ctx context.Context, username, email string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type userDaoImpl struct {
	*core.BaseComponent
	GormComp *gormdb.GormComponent `infra:"dep:database"`
	db       *gorm.DB
	dsName   string
}

func NewUserDao(dsName string) UserDao {
	return &userDaoImpl{
		BaseComponent: core.NewBaseComponent(bizConsts.COMP_DAO_USER),
		dsName:        dsName,
	}
}

func (d *userDaoImpl) Start(ctx context.Context) error {
	db, err := d.GormComp.GetDB(d.dsName)
	if err != nil {
		return fmt.Errorf("get gorm db %s failed: %w", d.dsName, err)
	}
	if err := db.WithContext(ctx).AutoMigrate(&model.User{}); err != nil {
		return fmt.Errorf("migrate users failed: %w", err)
	}
	d.db = db
	return d.BaseComponent.Start(ctx)
}

func (d *userDaoImpl) Stop(ctx context.Context) error { return d.BaseComponent.Stop(ctx) }

func (d *userDaoImpl) Create(ctx context.Context, u *model.User) error {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return d.db.WithContext(ctx).Create(u).Error
}

func (d *userDaoImpl) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := d.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (d *userDaoImpl) Exists(ctx context.Context, username, email string) (bool, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ? OR email = ?", strings.TrimSpace(username), strings.ToLower(strings.TrimSpace(email))).
		Count(&n).Error
	return n > 0, err
}

func (d *userDaoImpl) Count(ctx context.Context) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error
	return n, err
}
