package sms

import "log/slog"

// LogSender writes messages to the log instead of dispatching them.
// Used in dev when no Twilio credentials are present; the code is
// readable straight from the server output.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(to, body string) error {
	s.logger.Info("sms dispatch skipped", "to", to, "body", body)
	return nil
}
