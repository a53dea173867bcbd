//go:build !windows

package core

import (
	"context"
	"time"
)

// InstallWindowsCtrlHandler does nothing off Windows; signals cover shutdown there.
func InstallWindowsCtrlHandler(cancel context.CancelFunc, timeout time.Duration) {}
