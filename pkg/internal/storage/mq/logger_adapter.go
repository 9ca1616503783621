package mq

import (
	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// watermillLogger 把 watermill 的日志转发到 zerolog，统一带 component=mq.
// watermill 的 Info 多为订阅/关闭等生命周期信息，降为 Debug 输出.
type watermillLogger struct {
	base zerolog.Logger
}

// NewZerologAdapter 返回写入 l 的 watermill.LoggerAdapter.
func NewZerologAdapter(l *zerolog.Logger) watermill.LoggerAdapter {
	return watermillLogger{base: l.With().Str("component", "mq").Logger()}
}

func (w watermillLogger) emit(ev *zerolog.Event, msg string, fields watermill.LogFields) {
	if len(fields) > 0 {
		ev = ev.Fields(map[string]any(fields))
	}

	ev.Msg(msg)
}

func (w watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	w.emit(w.base.Error().Err(err), msg, fields)
}

func (w watermillLogger) Info(msg string, fields watermill.LogFields) {
	w.emit(w.base.Debug(), msg, fields)
}

func (w watermillLogger) Debug(msg string, fields watermill.LogFields) {
	w.emit(w.base.Debug(), msg, fields)
}

func (w watermillLogger) Trace(msg string, fields watermill.LogFields) {
	w.emit(w.base.Trace(), msg, fields)
}

func (w watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return watermillLogger{base: w.base.With().Fields(map[string]any(fields)).Logger()}
}
