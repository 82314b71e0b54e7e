// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package internal

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const LogFileName = "gms-system-test.log"

func parseLogLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel // Default to info level
	}
}

// InitLogger replaces the global logger with one that writes to stdout and to
// a log file inside logDir.
func InitLogger(logLevel string, logDir string) error {
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		err := os.MkdirAll(logDir, os.ModePerm)
		if err != nil {
			return err
		}
	}
	logFile := filepath.Join(logDir, LogFileName)
	loggerConfig := zap.NewDevelopmentConfig()
	loggerConfig.Level.SetLevel(parseLogLevel(logLevel))
	loggerConfig.OutputPaths = []string{"stdout", logFile}
	loggerConfig.DisableStacktrace = true
	loggerRoot, err := loggerConfig.Build()
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(loggerRoot)
	zap.S().Debugf("Log level set to %s", logLevel)

	return nil
}

func Logger() *zap.SugaredLogger {
	return zap.S()
}

func SyncLogger() {
	_ = zap.L().Sync()
}
