package logger

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/sirupsen/logrus"
)

const callerKey = "caller"

var levels = map[log.Level]logrus.Level{
	log.LevelDebug: logrus.DebugLevel,
	log.LevelInfo:  logrus.InfoLevel,
	log.LevelWarn:  logrus.WarnLevel,
	log.LevelError: logrus.ErrorLevel,
	log.LevelFatal: logrus.FatalLevel,
}

type kratosLogger struct {
	log *logrus.Logger
}

// NewKratosLogger 把 kratos 的日志写入 logrus，服务端与批处理共用同一格式和输出
func NewKratosLogger(l *logrus.Logger) log.Logger {
	return &kratosLogger{log: l}
}

func (k *kratosLogger) Log(level log.Level, keyvals ...interface{}) error {
	if len(keyvals) == 0 {
		return nil
	}
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "KEYVALS UNPAIRED")
	}

	var msg string
	fields := logrus.Fields{}
	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		if key == log.DefaultMessageKey {
			msg = fmt.Sprint(keyvals[i+1])
			continue
		}
		fields[key] = keyvals[i+1]
	}

	lvl, ok := levels[level]
	if !ok {
		lvl = logrus.InfoLevel
	}
	// Entry.Log 在 Fatal 级别不会退出进程，退出由 kratos 的 Helper 决定
	k.log.WithFields(fields).Log(lvl, msg)
	return nil
}
