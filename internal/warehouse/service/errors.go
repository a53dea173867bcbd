package service

import (
	"errors"

	"github.com/warehouse-management/warehouse/internal/warehouse/dao"
)

var (
	ErrNotFound           = dao.ErrNotFound
	ErrDuplicate          = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
