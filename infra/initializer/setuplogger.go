package initializer

import (
	"io"
	"log/slog"

	"github.com/amirasaad/remitquote/pkg/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

type levelStyle struct {
	level log.Level
	icon  string
	color lipgloss.AdaptiveColor
}

var levelStyles = []levelStyle{
	{log.DebugLevel, "🐛", lipgloss.AdaptiveColor{Light: "#7E57C2", Dark: "#7E57C2"}},
	{log.InfoLevel, "ℹ️", lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}},
	{log.WarnLevel, "⚠️", lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}},
	{log.ErrorLevel, "❌", lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"}},
}

// Keys highlighted in text output. Quote fields come first since they are
// what operators grep for.
var highlightedKeys = []string{"corridor", "direction", "stale", "source", "request_id", "error"}

func loggerStyles() *log.Styles {
	styles := log.DefaultStyles()
	for _, ls := range levelStyles {
		styles.Levels[ls.level] = lipgloss.NewStyle().
			SetString(ls.icon).
			Bold(true).
			Padding(0, 1).
			Foreground(ls.color)
	}

	keyColor := levelStyles[0].color
	for _, k := range highlightedKeys {
		styles.Keys[k] = lipgloss.NewStyle().Foreground(keyColor)
		styles.Values[k] = lipgloss.NewStyle().Bold(true)
	}
	styles.Keys["error"] = lipgloss.NewStyle().Foreground(levelStyles[3].color)
	return styles
}

// setupLogger builds the process logger and installs it as the slog default.
func setupLogger(cfg *config.Log, w io.Writer) *slog.Logger {
	formatter := log.TextFormatter
	switch cfg.Format {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	logger.SetStyles(loggerStyles())

	slogger := slog.New(logger)
	slog.SetDefault(slogger)
	return slogger
}
