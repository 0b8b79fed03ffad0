// Package logger configures the process-wide logrus logger: JSON output,
// level from config and masking of email addresses in logged field values.
package logger

import (
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// Setup configures the standard logrus logger.
func Setup(level string, redactPII bool) {
	Configure(logrus.StandardLogger(), os.Stderr, level, redactPII)
}

// Configure applies formatter, output, level and the redaction hook to l.
func Configure(l *logrus.Logger, out io.Writer, level string, redactPII bool) {
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05Z07:00"})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if redactPII {
		l.AddHook(redactHook{})
	}
}

// WithComponent returns an entry tagged with the component name.
func WithComponent(name string) *logrus.Entry {
	return logrus.WithField("component", name)
}

type redactHook struct{}

func (redactHook) Levels() []logrus.Level { return logrus.AllLevels }

func (redactHook) Fire(e *logrus.Entry) error {
	for k, v := range e.Data {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(k), "email") && strings.Contains(s, "@") {
			e.Data[k] = RedactEmail(s)
			continue
		}
		e.Data[k] = emailRegex.ReplaceAllStringFunc(s, RedactEmail)
	}
	e.Message = emailRegex.ReplaceAllStringFunc(e.Message, RedactEmail)
	return nil
}

// RedactEmail masks an email address for safe logging.
// "john.doe@example.com" → "jo***@example.com"
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}
