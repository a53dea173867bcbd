// config/validator.go
package config

import (
	"fmt"
	"net"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("listen_addr", validListenAddr)
	return &Validator{validate: v}
}

// validListenAddr accepts host:port for net.Listen. Port 0 asks the OS for
// a free port; the host may be empty.
func validListenAddr(fl validator.FieldLevel) bool {
	host, port, err := net.SplitHostPort(fl.Field().String())
	if err != nil || strings.ContainsAny(host, " \t/") {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 0 && n <= 65535
}

// ValidateAppConfig checks struct tags of every section and of the biz config.
func (v *Validator) ValidateAppConfig(config *AppConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := v.validate.Struct(config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if config.BizConfig != nil {
		rv := reflect.ValueOf(config.BizConfig)
		if rv.Kind() == reflect.Ptr && !rv.IsNil() && rv.Elem().Kind() == reflect.Struct {
			if err := v.validate.Struct(config.BizConfig); err != nil {
				return fmt.Errorf("invalid biz_config: %w", err)
			}
		}
	}
	return nil
}

func (v *Validator) validateConfigFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("config file path cannot be empty")
	}
	if len(path) > 255 {
		return fmt.Errorf("config file path is too long")
	}
	return nil
}
