package core

// Logger is any service that can log messages with optional structured arguments.
// A user.User argument identifies the acting user to the backing service.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
