package testutil

import (
	"io"

	"github.com/dtroode/academia-moderation/internal/logger"
)

func MakeNoopLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, 0, false)
}
