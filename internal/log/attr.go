package log

import (
	"time"

	"go.uber.org/zap"
)

// Field is an alias for zap.Field to avoid importing zap in other packages.
type Field = zap.Field

func Bool(key string, val bool) Field {
	return zap.Bool(key, val)
}

func Int(key string, val int) Field {
	return zap.Int(key, val)
}

func Int64(key string, val int64) Field {
	return zap.Int64(key, val)
}

func Uint64(key string, val uint64) Field {
	return zap.Uint64(key, val)
}

func String(key string, val string) Field {
	return zap.String(key, val)
}

func Strings(key string, val []string) Field {
	return zap.Strings(key, val)
}

func Error(err error) Field {
	return zap.Error(err)
}

func Any(key string, val any) Field {
	return zap.Any(key, val)
}

func Duration(key string, val time.Duration) Field {
	return zap.Duration(key, val)
}

func Time(key string, val time.Time) Field {
	return zap.Time(key, val)
}

// Token tags a log line with a room token.
func Token(token string) Field {
	return zap.String("token", token)
}

// Session tags a log line with a backend session id, shortened since
// Talk session ids are long opaque strings.
func Session(sessionID string) Field {
	const keep = 12
	if len(sessionID) > keep {
		sessionID = sessionID[:keep] + "..."
	}
	return zap.String("sessionId", sessionID)
}

// Gen tags a log line with an attempt generation.
func Gen(gen uint64) Field {
	return zap.Uint64("gen", gen)
}
