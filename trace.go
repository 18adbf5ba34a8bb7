package tfa

import (
	"encoding/hex"
	"fmt"

	"github.com/edaniels/golog"
)

// Tracer receives every transfer on the control channel.
type Tracer interface {
	RegisterRead(reg uint8, value uint16)
	RegisterWrite(reg uint8, value uint16)
	// PatchWrite reports patch number index (1-based) and the result of its write.
	PatchWrite(index int, data []byte, n int, err error)
}

// LogTracer logs transfers at debug level, decoding register values into the named
// TFA9888 bitfields.
type LogTracer struct {
	logger golog.Logger
}

// NewLogTracer returns a tracer writing to logger.
func NewLogTracer(logger golog.Logger) *LogTracer {
	return &LogTracer{logger: logger}
}

func (t *LogTracer) RegisterRead(reg uint8, value uint16) {
	t.logger.Debugw("GET", "reg", fmt.Sprintf("0x%02x", reg), "value", fmt.Sprintf("0x%04x", value), "fields", Describe(reg, value))
}

func (t *LogTracer) RegisterWrite(reg uint8, value uint16) {
	t.logger.Debugw("SET", "reg", fmt.Sprintf("0x%02x", reg), "value", fmt.Sprintf("0x%04x", value), "fields", Describe(reg, value))
}

func (t *LogTracer) PatchWrite(index int, data []byte, n int, err error) {
	if err != nil {
		t.logger.Debugw("WR", "patch", index, "len", len(data), "error", err)

		return
	}

	t.logger.Debugw("WR", "patch", index, "written", n, "data", hex.EncodeToString(data))
}
