// Package bootstrap writes the starter files a fresh keeper setup needs.
package bootstrap

import (
	"os"
	"path/filepath"
	"strings"
)

const configTemplate = `# botkeeper configuration. Every field is optional; missing fields fall
# back to their defaults.
bot:
  # Program to keep alive. Relative paths resolve against the directory
  # containing the keeper executable.
  path: bot/app

  # Cron expression (5-field or @daily style). At each firing the bot is
  # asked to exit and is relaunched.
  # restart_schedule: "0 4 * * *"

log:
  # Append-only lifecycle log. Unset disables file logging.
  # file: logs/botkeeper.log

presence:
  # Publish bot status to redis while the keeper runs.
  # redis_url: redis://localhost:6379/0
  # bot_id: app
  # heartbeat: 5s
  # ttl_seconds: 15
`

type InitOptions struct {
	ConfigPath string
}

type InitReport struct {
	ConfigPath string
	Created    []string
	Skipped    []string
}

// Init writes a commented starter config, leaving existing files alone.
func Init(opts InitOptions) (InitReport, error) {
	report := InitReport{ConfigPath: strings.TrimSpace(opts.ConfigPath)}
	if report.ConfigPath == "" {
		report.ConfigPath = "botkeeper.yaml"
	}
	if err := writeTemplateFile(report.ConfigPath, 0o644, []byte(configTemplate), &report); err != nil {
		return report, err
	}
	return report, nil
}

func writeTemplateFile(path string, perm os.FileMode, data []byte, report *InitReport) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		if report != nil {
			report.Skipped = append(report.Skipped, path)
		}
		return nil
	} else if err != nil && !os.IsNotExist(err) {
		return err
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	out := data
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(append([]byte(nil), out...), '\n')
	}
	if err := os.WriteFile(path, out, perm); err != nil {
		return err
	}
	if report != nil {
		report.Created = append(report.Created, path)
	}
	return nil
}
