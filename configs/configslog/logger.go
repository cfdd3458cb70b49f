package configslog

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the strict (structured-field) logger, SLog the sugared one.
// Both point at the same core; Init replaces them once at startup.
var (
	Log  *zap.Logger
	SLog *zap.SugaredLogger
)

func init() {
	// Usable before Init for early config/DB errors.
	Log = zap.NewNop()
	SLog = Log.Sugar()
}

// Init configures the global loggers. env "production" switches to JSON
// output and Info level; anything else gets the console encoder at Debug.
func Init(env string) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	logger, err := cfg.Build(zap.AddCallerSkip(0))
	if err != nil {
		// No logger to report with at this point.
		os.Stderr.WriteString("logger init failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	Log = logger
	SLog = logger.Sugar()
}

// Sync flushes buffered log entries. Call on shutdown.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}
