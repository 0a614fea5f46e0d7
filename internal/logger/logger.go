package logger

import (
	"io"
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// Setup returns a JSON logger writing to out. Unknown levels fall back to info.
func Setup(level string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.JSONFormatter{FieldMap: logrus.FieldMap{
		logrus.FieldKeyMsg: "message",
	}})

	log.SetLevel(logrus.InfoLevel)
	l, err := logrus.ParseLevel(level)
	if err != nil {
		log.Warnf("parse log level %s failed, using default level info", level)
	} else {
		log.SetLevel(l)
	}

	return log
}

func CapturePanic(log logrus.FieldLogger) {
	if err := recover(); err != nil {
		log.WithField("stack", string(debug.Stack())).Errorf("recovered from panic, %T: %v", err, err)
	}
}
