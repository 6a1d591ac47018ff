package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log = zap.NewNop()

// Init builds the process logger. Production gets JSON output; anything else
// gets the colored console encoder.
func Init(env string) *zap.Logger {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	Log = zap.Must(cfg.Build())
	return Log
}

// Named returns a component logger, e.g. Named("referral").
func Named(name string) *zap.Logger {
	return Log.Named(name)
}

func Sugar() *zap.SugaredLogger {
	return Log.Sugar()
}
