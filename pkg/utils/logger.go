package utils

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

// InitLogger configures the shared logger. In production the output goes to
// logs/app.log under logDir (the working directory when empty).
func InitLogger(env, level, logDir string) {
	Logger.SetReportCaller(true)

	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
		PrettyPrint:     false,
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			filename := filepath.Base(f.File)
			return "", filename + ":" + strconv.Itoa(f.Line)
		},
	})

	Logger.SetLevel(ParseLevel(level))

	if env != "production" {
		Logger.Out = os.Stdout
		return
	}

	out, err := openLogFile(logDir)
	if err != nil {
		Logger.Out = os.Stdout
		Logger.WithError(err).Warn("Failed to log to file, using stdout instead")
		return
	}
	Logger.Out = out
}

func ParseLevel(level string) logrus.Level {
	switch level {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func openLogFile(logDir string) (io.Writer, error) {
	if logDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		logDir = wd
	}

	dir := filepath.Join(logDir, "logs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return os.OpenFile(filepath.Join(dir, "app.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
}
