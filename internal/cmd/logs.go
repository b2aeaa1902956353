package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/gantry/internal/errors"
	"github.com/Iron-Ham/gantry/internal/logging"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View the gantry log",
	Long: `View and filter the JSON log written by gantry commands.

Examples:
  # Show the last 50 entries
  gantry logs

  # Show every entry for one project
  gantry logs -p tower-b -n 0

  # Follow the log in real-time
  gantry logs -f

  # Pin conflicts and other warnings from the last hour
  gantry logs --level warn --since 1h

  # Search for specific patterns
  gantry logs --grep "conflict|rejected"`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().StringP("project", "p", "", "only entries for this project")
	logsCmd.Flags().IntP("tail", "n", 50, "number of entries to show (0 for all)")
	logsCmd.Flags().BoolP("follow", "f", false, "follow log output (like tail -f)")
	logsCmd.Flags().String("level", "", "minimum level (debug/info/warn/error)")
	logsCmd.Flags().String("since", "", "only entries newer than this duration (e.g., 1h, 30m)")
	logsCmd.Flags().String("grep", "", "only entries matching this pattern (regex)")
}

// logEntry is one parsed JSON log line
type logEntry struct {
	Time      time.Time      `json:"time"`
	Level     string         `json:"level"`
	Msg       string         `json:"msg"`
	ProjectID string         `json:"project_id,omitempty"`
	Operation string         `json:"operation,omitempty"`
	Extra     map[string]any `json:"-"`
}

// UnmarshalJSON keeps fields other than the known ones in Extra
func (e *logEntry) UnmarshalJSON(data []byte) error {
	type alias logEntry
	aux := (*alias)(e)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, known := range []string{"time", "level", "msg", "project_id", "operation"} {
		delete(all, known)
	}
	if len(all) > 0 {
		e.Extra = all
	}
	return nil
}

// logFilter selects the entries to print
type logFilter struct {
	project  string
	minLevel int
	since    time.Time
	pattern  *regexp.Regexp
}

func (f logFilter) match(e *logEntry) bool {
	if f.project != "" && e.ProjectID != f.project {
		return false
	}
	if f.minLevel >= 0 && levelPriority(e.Level) < f.minLevel {
		return false
	}
	if !f.since.IsZero() && e.Time.Before(f.since) {
		return false
	}
	if f.pattern != nil {
		text := e.Msg
		for _, v := range e.Extra {
			text += " " + fmt.Sprint(v)
		}
		if !f.pattern.MatchString(text) {
			return false
		}
	}
	return true
}

// levelPriority orders levels for the --level filter
func levelPriority(level string) int {
	return slices.Index(logging.ValidLevels(), strings.ToUpper(level))
}

// logStyles colors levels and context fields
type logStyles struct {
	muted  lipgloss.Style
	levels map[string]lipgloss.Style
	field  lipgloss.Style
}

func newLogStyles(color bool) logStyles {
	if !color {
		return logStyles{levels: map[string]lipgloss.Style{}}
	}
	return logStyles{
		muted: lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		levels: map[string]lipgloss.Style{
			logging.LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
			logging.LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")),
			logging.LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
			logging.LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		},
		field: lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
	}
}

func (s logStyles) format(e *logEntry) string {
	var sb strings.Builder
	level := strings.ToUpper(e.Level)

	sb.WriteString(s.muted.Render("[" + e.Time.Format("2006-01-02 15:04:05") + "]"))
	sb.WriteString(" ")
	sb.WriteString(s.levels[level].Render("[" + level + "]"))
	sb.WriteString(" ")
	sb.WriteString(e.Msg)

	if e.ProjectID != "" {
		sb.WriteString(" " + s.field.Render("project_id=") + e.ProjectID)
	}
	if e.Operation != "" {
		sb.WriteString(" " + s.field.Render("operation=") + e.Operation)
	}
	keys := make([]string, 0, len(e.Extra))
	for k := range e.Extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		sb.WriteString(" " + s.field.Render(k+"=") + fmt.Sprint(e.Extra[k]))
	}
	return sb.String()
}

func runLogs(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	logPath := filepath.Join(a.logDir, logging.LogFileName)
	styles := newLogStyles(a.cfg.Output.Color)
	a.close()

	flags := cmd.Flags()
	filter := logFilter{minLevel: -1}
	filter.project, _ = flags.GetString("project")
	if level, _ := flags.GetString("level"); level != "" {
		filter.minLevel = levelPriority(logging.ParseLevel(level))
	}
	if since, _ := flags.GetString("since"); since != "" {
		d, err := time.ParseDuration(since)
		if err != nil {
			return errors.NewValidationError("invalid duration").WithField("since").WithValue(since).WithCause(err)
		}
		filter.since = time.Now().Add(-d)
	}
	if grep, _ := flags.GetString("grep"); grep != "" {
		filter.pattern, err = regexp.Compile(grep)
		if err != nil {
			return errors.NewValidationError("invalid grep pattern").WithField("grep").WithValue(grep).WithCause(err)
		}
	}

	out := cmd.OutOrStdout()
	if follow, _ := flags.GetBool("follow"); follow {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return followLogs(ctx, out, logPath, filter, styles)
	}
	tail, _ := flags.GetInt("tail")
	return displayLogs(out, logPath, tail, filter, styles)
}

// displayLogs prints the last tail matching entries
func displayLogs(out io.Writer, logPath string, tail int, filter logFilter, styles logStyles) error {
	file, err := os.Open(logPath)
	if os.IsNotExist(err) {
		fmt.Fprintf(out, "No log at %s\n", logPath)
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to open log file")
	}
	defer func() { _ = file.Close() }()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line, ok := renderLine(scanner.Text(), filter, styles); ok {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "error reading log file")
	}

	if tail > 0 && len(lines) > tail {
		lines = lines[len(lines)-tail:]
	}
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	if len(lines) == 0 {
		fmt.Fprintln(out, "No matching log entries found.")
	}
	return nil
}

// followLogs prints entries appended to the log until ctx is done
func followLogs(ctx context.Context, out io.Writer, logPath string, filter logFilter, styles logStyles) error {
	file, err := os.Open(logPath)
	if err != nil {
		return errors.Wrap(err, "failed to open log file")
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return errors.Wrap(err, "failed to seek to end")
	}
	fmt.Fprintf(out, "Following %s... (Ctrl+C to stop)\n\n", logPath)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	reader := bufio.NewReader(file)
	var partial string
	for {
		chunk, err := reader.ReadString('\n')
		partial += chunk
		switch {
		case err == io.EOF:
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		case err != nil:
			return errors.Wrap(err, "error reading log file")
		default:
			if line, ok := renderLine(partial, filter, styles); ok {
				fmt.Fprintln(out, line)
			}
			partial = ""
		}
	}
}

// renderLine formats one raw log line. Lines that are not JSON are kept as
// they are.
func renderLine(raw string, filter logFilter, styles logStyles) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	var e logEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return raw, true
	}
	if !filter.match(&e) {
		return "", false
	}
	return styles.format(&e), true
}
