package shared

// Logger is the logging port every resolver stage is handed, generalizing
// the teacher's services.ConsoleLogger into a shared interface instead of a
// service-container concrete type.
type Logger interface {
	Info(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Error(format string, args ...interface{})
	Debug(format string, args ...interface{})
	Success(format string, args ...interface{})
	SetDebugMode(enabled bool)
}

// ConsoleLogger writes colorized lines to stdout, exactly as the teacher's
// services.ConsoleLogger does.
type ConsoleLogger struct {
	debugEnabled bool
}

// NewConsoleLogger returns a Logger with debug output disabled.
func NewConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{}
}

func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	ColorInfo.Printf("[INFO] "+format+"\n", args...)
}

func (l *ConsoleLogger) Warning(format string, args ...interface{}) {
	ColorWarning.Printf("[WARN] "+format+"\n", args...)
}

func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	ColorError.Printf("[ERROR] "+format+"\n", args...)
}

func (l *ConsoleLogger) Debug(format string, args ...interface{}) {
	if l.debugEnabled {
		ColorPrompt.Printf("[DEBUG] "+format+"\n", args...)
	}
}

func (l *ConsoleLogger) Success(format string, args ...interface{}) {
	ColorSuccess.Printf("[SUCCESS] "+format+"\n", args...)
}

func (l *ConsoleLogger) SetDebugMode(enabled bool) {
	l.debugEnabled = enabled
}
