//go:build windows

package core

import (
	"context"
	"log"
	"sync"
	"syscall"
	"time"
)

var ctrlOnce sync.Once

// InstallWindowsCtrlHandler cancels the run context on console close, logoff
// and system shutdown, which the desktop bundle receives instead of SIGTERM.
func InstallWindowsCtrlHandler(cancel context.CancelFunc, timeout time.Duration) {
	handler := func(ctrlType uint32) uintptr {
		switch ctrlType {
		case 0, 1, 2, 5, 6: // CTRL_C, CTRL_BREAK, CLOSE, LOGOFF, SHUTDOWN
			ctrlOnce.Do(func() {
				log.Printf("console control event %d received, shutting down (timeout %s)", ctrlType, timeout)
				cancel()
			})
			return 1
		default:
			return 0
		}
	}

	kernel32 := syscall.NewLazyDLL("kernel32.dll")
	setHandler := kernel32.NewProc("SetConsoleCtrlHandler")
	if ret, _, err := setHandler.Call(syscall.NewCallback(handler), 1); ret == 0 {
		log.Printf("SetConsoleCtrlHandler failed: %v", err)
	}
}
