package klogger

// Logger is a handle bound to one target. Messages are plain strings so
// callers on firmware builds need not pull in fmt.
type Logger interface {
	Trace(msg string)
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// Module returns a Logger that tags every record with target and writes to
// the global console. It may be created before Init; records logged before
// Init are dropped.
func Module(target string) Logger {
	return moduleLogger{target: target}
}

// For returns a Logger bound to this console rather than the global one.
func (c *Console) For(target string) Logger {
	return consoleLogger{c: c, target: target}
}

type moduleLogger struct {
	target string
}

func (l moduleLogger) log(level Level, msg string) {
	Log(Record{Level: level, Target: l.target, Message: msg})
}

func (l moduleLogger) Trace(msg string) { l.log(LevelTrace, msg) }
func (l moduleLogger) Debug(msg string) { l.log(LevelDebug, msg) }
func (l moduleLogger) Info(msg string)  { l.log(LevelInfo, msg) }
func (l moduleLogger) Warn(msg string)  { l.log(LevelWarn, msg) }
func (l moduleLogger) Error(msg string) { l.log(LevelError, msg) }

type consoleLogger struct {
	c      *Console
	target string
}

func (l consoleLogger) log(level Level, msg string) {
	l.c.Log(Record{Level: level, Target: l.target, Message: msg})
}

func (l consoleLogger) Trace(msg string) { l.log(LevelTrace, msg) }
func (l consoleLogger) Debug(msg string) { l.log(LevelDebug, msg) }
func (l consoleLogger) Info(msg string)  { l.log(LevelInfo, msg) }
func (l consoleLogger) Warn(msg string)  { l.log(LevelWarn, msg) }
func (l consoleLogger) Error(msg string) { l.log(LevelError, msg) }
