package log

import (
	"io"
	"os"

	"github.com/op/go-logging"
)

type Level logging.Level

// The levels that can be passed to the SetLevel function.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

// The logger format
var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

// The internal leveled logger backend
var leveledBackend logging.LeveledBackend

// The logger interface
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// Create a new named logger.
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

// Set the minimum level for emitted log entries.
func SetLevel(level Level) {
	switch level {
	case Debug:
		leveledBackend.SetLevel(logging.DEBUG, "")
	case Info:
		leveledBackend.SetLevel(logging.INFO, "")
	case Notice:
		leveledBackend.SetLevel(logging.NOTICE, "")
	case Warning:
		leveledBackend.SetLevel(logging.WARNING, "")
	case Error:
		leveledBackend.SetLevel(logging.ERROR, "")
	}
}

// Redirect log output to the given writer.
func SetOutput(w io.Writer) {
	backend := logging.NewLogBackend(w, "", 0)
	leveledBackend = logging.AddModuleLevel(logging.NewBackendFormatter(backend, format))
	leveledBackend.SetLevel(logging.NOTICE, "")
	logging.SetBackend(leveledBackend)
}

func init() {
	SetOutput(os.Stderr)
}
