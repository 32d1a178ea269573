// Package logger provides namespaced debug loggers controlled by the DEBUG
// environment variable, following the conventions of the npm debug package:
//
//	DEBUG=*                enables everything
//	DEBUG=runner:*         enables one namespace tree
//	DEBUG=cli:run,runner:* enables several patterns
//	DEBUG=*,-workflow:*    enables everything except a pattern
//
// Output goes to stderr with the elapsed time since the previous message,
// colored per namespace when stderr is a terminal.
package logger

import (
	"fmt"
	"hash/fnv"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/wfrun/wfrun/pkg/timeutil"
	"github.com/wfrun/wfrun/pkg/tty"
)

// Logger is a debug logger bound to a single namespace.
type Logger struct {
	namespace string
	enabled   bool
	color     string

	mu      sync.Mutex
	lastLog time.Time
}

var (
	debugEnv    = os.Getenv("DEBUG")
	debugColors = os.Getenv("DEBUG_COLORS") != "0"
	stderrIsTTY = tty.IsStderrTerminal()

	// ANSI 256-color codes picked to stay readable on light and dark
	// backgrounds alike.
	palette = []string{
		"\033[38;5;33m",  // blue
		"\033[38;5;35m",  // green
		"\033[38;5;166m", // orange
		"\033[38;5;125m", // purple
		"\033[38;5;37m",  // cyan
		"\033[38;5;161m", // magenta
		"\033[38;5;136m", // yellow
		"\033[38;5;124m", // red
		"\033[38;5;28m",  // dark green
		"\033[38;5;63m",  // light blue
	}

	colorReset = "\033[0m"
)

// New creates a Logger for the given namespace. Whether the logger is
// enabled is decided once, at construction time, from the DEBUG patterns.
func New(namespace string) *Logger {
	return &Logger{
		namespace: namespace,
		enabled:   matchesDebugPatterns(namespace, debugEnv),
		color:     namespaceColor(namespace),
		lastLog:   time.Now(),
	}
}

// Enabled reports whether this logger writes anything.
func (l *Logger) Enabled() bool {
	return l.enabled
}

// Printf logs a formatted message with a trailing newline.
func (l *Logger) Printf(format string, args ...any) {
	if !l.enabled {
		return
	}
	l.emit(fmt.Sprintf(format, args...))
}

// Print logs a message with a trailing newline.
func (l *Logger) Print(args ...any) {
	if !l.enabled {
		return
	}
	l.emit(fmt.Sprint(args...))
}

func (l *Logger) emit(message string) {
	l.mu.Lock()
	now := time.Now()
	diff := now.Sub(l.lastLog)
	l.lastLog = now
	l.mu.Unlock()

	if l.color != "" {
		fmt.Fprintf(os.Stderr, "%s%s%s %s +%s\n", l.color, l.namespace, colorReset, message, timeutil.FormatDuration(diff))
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s +%s\n", l.namespace, message, timeutil.FormatDuration(diff))
}

// namespaceColor assigns a stable palette color to a namespace via FNV-1a.
func namespaceColor(namespace string) string {
	if !debugColors || !stderrIsTTY {
		return ""
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(namespace))
	return palette[h.Sum32()%uint32(len(palette))]
}

// matchesDebugPatterns decides whether a namespace is enabled by the given
// comma-separated DEBUG pattern list. Exclusion patterns (leading -) win
// over inclusions.
func matchesDebugPatterns(namespace, patterns string) bool {
	enabled := false
	for pattern := range strings.SplitSeq(patterns, ",") {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if exclude, ok := strings.CutPrefix(pattern, "-"); ok {
			if matchPattern(namespace, exclude) {
				return false
			}
			continue
		}
		if matchPattern(namespace, pattern) {
			enabled = true
		}
	}
	return enabled
}

// matchPattern matches a namespace against a single pattern with at most
// one * wildcard.
func matchPattern(namespace, pattern string) bool {
	if pattern == "*" || pattern == namespace {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return false
	}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(namespace, prefix)
	}
	if suffix, ok := strings.CutPrefix(pattern, "*"); ok {
		return strings.HasSuffix(namespace, suffix)
	}
	parts := strings.SplitN(pattern, "*", 2)
	return strings.HasPrefix(namespace, parts[0]) && strings.HasSuffix(namespace, parts[1])
}
