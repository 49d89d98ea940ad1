package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger 全局结构化日志记录器
	Logger *zap.Logger
	sugar  *zap.SugaredLogger
)

// SetupLogger 初始化日志配置
func SetupLogger() error {
	// 创建日志目录
	logDir := "logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("创建日志目录失败: %v", err)
	}

	// 生成当前日期的日志文件名
	currentTime := time.Now()
	logFileName := filepath.Join(logDir, fmt.Sprintf("%s.log", currentTime.Format("2006-01-02")))

	// 打开日志文件
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("打开日志文件失败: %v", err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	// 同时输出到控制台和文件
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(os.Stdout), zapcore.InfoLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(logFile), zapcore.InfoLevel),
	)

	Logger = zap.New(core, zap.AddCaller())
	sugar = Logger.Sugar()

	return nil
}

// Info 记录信息级别的日志
func Info(format string, v ...interface{}) {
	if sugar == nil {
		fmt.Printf("INFO: "+format+"\n", v...)
		return
	}
	sugar.Infof(format, v...)
}

// Warning 记录警告级别的日志
func Warning(format string, v ...interface{}) {
	if sugar == nil {
		fmt.Printf("WARNING: "+format+"\n", v...)
		return
	}
	sugar.Warnf(format, v...)
}

// Error 记录错误级别的日志
func Error(format string, v ...interface{}) {
	if sugar == nil {
		fmt.Printf("ERROR: "+format+"\n", v...)
		return
	}
	sugar.Errorf(format, v...)
}
