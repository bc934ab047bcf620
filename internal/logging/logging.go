// Package logging builds the service's zap logger.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/parisxmas/OxiDB/OxiAnketa/internal/gelf"
)

type Options struct {
	Level       string
	Development bool
	// GelfAddr adds a GELF UDP sink when set.
	GelfAddr string
	Service  string
}

// New returns the logger and a function that flushes and releases its sinks.
func New(opts Options) (*zap.Logger, func(), error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		l, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("log level: %w", err)
		}
		level = l
	}

	var console zapcore.Encoder
	if opts.Development {
		enc := zap.NewDevelopmentEncoderConfig()
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		console = zapcore.NewConsoleEncoder(enc)
	} else {
		console = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	cores := []zapcore.Core{zapcore.NewCore(console, zapcore.Lock(os.Stderr), level)}

	cleanup := func() {}
	if opts.GelfAddr != "" {
		w, err := gelf.New(opts.GelfAddr, opts.Service)
		if err != nil {
			return nil, nil, fmt.Errorf("gelf: %w", err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), w, level))
		cleanup = func() { w.Close() }
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if opts.Service != "" {
		log = log.With(zap.String("service", opts.Service))
	}
	return log, func() {
		log.Sync()
		cleanup()
	}, nil
}
