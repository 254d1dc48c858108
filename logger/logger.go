package logger

import (
	"log"

	"go.uber.org/zap"
)

var zlog *zap.Logger

func init() {
	l, err := zap.NewProduction(zap.AddCallerSkip(1))
	if err != nil {
		log.Fatal(err)
	}
	zlog = l
}

func Debug(msg string, fields ...zap.Field) {
	zlog.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	zlog.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	zlog.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	zlog.Error(msg, fields...)
}

func Sync() {
	_ = zlog.Sync()
}
