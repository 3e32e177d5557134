package log

import (
	"os"
	"strings"

	"github.com/iancoleman/strcase"
	"go.uber.org/zap/zapcore"
)

const levelEnv = "LOG_LEVEL"

var envFunc = func(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func parseLevel(s string) (zapcore.Level, bool) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zapcore.InfoLevel, false
	}
	return lvl, true
}

func parseLevelFromEnv(key string) (zapcore.Level, bool) {
	v, ok := envFunc(key)
	if !ok {
		return zapcore.InfoLevel, false
	}
	return parseLevel(v)
}

// levelKeys lists the env keys consulted for a module path, most specific
// first: Coordinator.Compensator gives LOG_LEVEL__COORDINATOR__COMPENSATOR,
// LOG_LEVEL__COORDINATOR, LOG_LEVEL.
func levelKeys(names []string) []string {
	keys := make([]string, 0, len(names)+1)
	var b strings.Builder
	b.WriteString(levelEnv)
	for _, n := range names {
		b.WriteString("__")
		b.WriteString(strcase.ToScreamingSnake(n))
		keys = append(keys, b.String())
	}
	for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
		keys[i], keys[j] = keys[j], keys[i]
	}
	return append(keys, levelEnv)
}

// moduleLevel falls through keys that are unset or unparsable.
func moduleLevel(names []string) zapcore.Level {
	for _, k := range levelKeys(names) {
		if lv, ok := parseLevelFromEnv(k); ok {
			return lv
		}
	}
	return zapcore.InfoLevel
}
