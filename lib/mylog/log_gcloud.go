package mylog

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/MarcGrol/storefront/lib/mycontext"
)

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") != "" {
		New = newGcloudLogger

		// Cloud Logging picks up severity and message from these exact fields
		zerolog.LevelFieldName = "severity"
		zerolog.MessageFieldName = "message"
		zerolog.LevelFieldMarshalFunc = func(l zerolog.Level) string {
			return strings.ToUpper(l.String())
		}
	}
}

type structuredLogger struct {
	componentName string
	logger        zerolog.Logger
}

func newGcloudLogger(componentName string) Logger {
	return structuredLogger{
		componentName: componentName,
		logger:        zerolog.New(os.Stdout).With().Str("component", componentName).Logger(),
	}
}

func (l structuredLogger) Log(ctx context.Context, traceLabel string, severity Severity, format string, a ...any) {
	event := l.logger.WithLevel(toLevel(severity)).
		Dict("labels", zerolog.Dict().Str("aggregate", traceLabel))

	trace := mycontext.TraceFromContext(ctx)
	if trace != "" {
		event = event.Str("logging.googleapis.com/trace", trace)
	}

	event.Msgf(l.componentName+":"+format, a...)
}
