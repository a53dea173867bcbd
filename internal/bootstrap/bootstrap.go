// Package bootstrap holds the startup steps that run before the
// application host takes over: locating the install directory and
// building the process logging configuration.
package bootstrap

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/warehouse-management/warehouse/internal/application/components/logging"
)

const (
	AppName     = "warehouse-management"
	logsDirName = "logs"
	binDirName  = "bin"

	// MaxLogFileSize is the rotation threshold of the log file.
	MaxLogFileSize int64 = 10_000_000
)

// BuildDir is injected at build time:
//
//	go build -ldflags "-X github.com/warehouse-management/warehouse/internal/bootstrap.BuildDir=$PWD"
var BuildDir string

// Runner is the blocking run loop handed control after configuration.
type Runner interface {
	Run() error
}

// BaseDir resolves the application base directory: the injected build
// directory when set, else the directory of the running executable. An
// executable inside a "bin" directory (build/bin bundles) resolves to the
// parent of that directory.
func BaseDir() (string, error) {
	return resolveBaseDir(BuildDir, os.Executable)
}

func resolveBaseDir(buildDir string, executable func() (string, error)) (string, error) {
	if buildDir != "" {
		return filepath.Abs(buildDir)
	}
	exe, err := executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	dir := filepath.Dir(exe)
	if filepath.Base(dir) == binDirName {
		dir = filepath.Dir(dir)
	}
	return dir, nil
}

// LogDirectory is <base>/logs. It is not created here; the file target
// creates it on first write.
func LogDirectory(baseDir string) string {
	return filepath.Join(baseDir, logsDirName)
}

// LoggingConfiguration is the fixed logger setup of the process: terminal,
// embedded console and a rotating file, info threshold, rotated files
// never deleted, local timestamps.
func LoggingConfiguration(logDir string) *logging.LoggingConfig {
	return logging.NewConfig(
		logging.WithTarget(logging.NewTarget(logging.TargetStdout)),
		logging.WithTarget(logging.NewTarget(logging.TargetWebview)),
		logging.WithTarget(logging.FolderTarget(logDir, AppName)),
		logging.WithLevel("info"),
		logging.WithRotation(logging.KeepAll()),
		logging.WithMaxFileSize(MaxLogFileSize),
		logging.WithTimezone(logging.TimezoneUseLocal),
	)
}

// Launch runs r and converts a failure into a message on stderr and
// exit status 1.
func Launch(r Runner, stderr io.Writer) int {
	if err := r.Run(); err != nil {
		fmt.Fprintf(stderr, "error while running %s application: %v\n", AppName, err)
		return 1
	}
	return 0
}
