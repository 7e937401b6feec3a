package util

import "github.com/pterm/pterm"

func init() {
	pterm.DefaultLogger.ShowTime = true
	pterm.DefaultLogger.TimeFormat = "02 Jan 2006 15:04:05"
}

// Leveled logging functions backed by pterm prefixed printers.
// All output goes to stderr by default (pterm's default).

func LogDebug(format string, args ...interface{}) {
	pterm.Debug.Printfln(format, args...)
}

func LogInfo(format string, args ...interface{}) {
	pterm.Info.Printfln(format, args...)
}

func LogSuccess(format string, args ...interface{}) {
	pterm.Success.Printfln(format, args...)
}

func LogWarning(format string, args ...interface{}) {
	pterm.Warning.Printfln(format, args...)
}

func LogError(format string, args ...interface{}) {
	pterm.Error.Printfln(format, args...)
}

// EnableDebug configures the logger to show debug messages.
func EnableDebug() {
	pterm.EnableDebugMessages()
	pterm.DefaultLogger.Level = pterm.LogLevelDebug
}

// SessionLogger scopes every line to one peer session, so callers stop
// re-spelling "session %s ..." at every call site. Relay and client code
// both deal in a PeerID-shaped string; SessionLogger only needs the string
// form, not the transport package itself.
type SessionLogger struct {
	session string
}

// NewSessionLogger scopes log output to sessionID.
func NewSessionLogger(sessionID string) SessionLogger {
	return SessionLogger{session: sessionID}
}

// Channel narrows the scope further to one logical channel within the
// session.
func (l SessionLogger) Channel(channelID uint8) ChannelLogger {
	return ChannelLogger{session: l.session, channelID: channelID}
}

func (l SessionLogger) Debug(format string, args ...interface{}) {
	LogDebug("session %s: "+format, prepend(l.session, args)...)
}

func (l SessionLogger) Info(format string, args ...interface{}) {
	LogInfo("session %s: "+format, prepend(l.session, args)...)
}

func (l SessionLogger) Warning(format string, args ...interface{}) {
	LogWarning("session %s: "+format, prepend(l.session, args)...)
}

func (l SessionLogger) Error(format string, args ...interface{}) {
	LogError("session %s: "+format, prepend(l.session, args)...)
}

// ChannelLogger is a SessionLogger further scoped to one channel-id.
type ChannelLogger struct {
	session   string
	channelID uint8
}

func (l ChannelLogger) Debug(format string, args ...interface{}) {
	LogDebug("session %s channel %d: "+format, prepend2(l.session, l.channelID, args)...)
}

func (l ChannelLogger) Warning(format string, args ...interface{}) {
	LogWarning("session %s channel %d: "+format, prepend2(l.session, l.channelID, args)...)
}

func prepend(session string, args []interface{}) []interface{} {
	return append([]interface{}{session}, args...)
}

func prepend2(session string, channelID uint8, args []interface{}) []interface{} {
	return append([]interface{}{session, channelID}, args...)
}
