package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the shared application logger. InitLogger must run before first use.
var Log *logrus.Logger

// InitLogger configures structured JSON logging on stdout.
func InitLogger() {
	Log = logrus.New()
	Log.Out = os.Stdout
	Log.SetFormatter(&logrus.JSONFormatter{})
	Log.SetLevel(logrus.InfoLevel)
}
