// Package logging builds the zap logger shared by the commands. Everything is
// written to stderr so stdout stays free for CSV output.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mssprep/internal"
)

func New(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	cfg.Sampling = nil

	return cfg.Build()
}

// LogDiagnostics writes each diagnostic as a warning.
func LogDiagnostics(logger *zap.Logger, diags []internal.Diagnostic) {
	for _, d := range diags {
		fields := []zap.Field{zap.String("kind", string(d.Kind))}
		if d.Folder != "" {
			fields = append(fields, zap.String("folder", d.Folder))
		}
		if d.BibID != "" {
			fields = append(fields, zap.String("bibid", d.BibID))
		}
		if len(d.BibIDs) > 0 {
			fields = append(fields, zap.Strings("bibids", d.BibIDs))
		}
		logger.Warn(d.Message, fields...)
	}
}
