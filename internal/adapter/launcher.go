package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

// Launcher opens channels outside the dashboard: live streams in a stream
// player when one is available, everything else in the browser.
type Launcher struct {
	command string   // configured player command, empty for auto-detect
	args    []string // additional arguments for the player
	logger  *slog.Logger

	// Replaceable for tests
	lookPath func(file string) (string, error)
	start    func(cmd *exec.Cmd) error
}

// candidatePlayers are tried in order for live streams when no command is configured.
// Each one resolves kick.com URLs on its own.
var candidatePlayers = []struct {
	command string
	args    []string
}{
	{command: "streamlink", args: []string{"--player-passthrough", "hls"}},
	{command: "mpv"},
}

// NewLauncher creates a launcher. An empty command enables player auto-detection.
func NewLauncher(cfg PlayerConfig, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command:  cfg.Command,
		args:     cfg.Args,
		logger:   logger,
		lookPath: exec.LookPath,
		start:    func(cmd *exec.Cmd) error { return cmd.Start() },
	}
}

// Launch opens url. Live channels go to the configured or a detected player,
// falling back to the system browser; offline channels always use the browser.
func (l *Launcher) Launch(url string, live bool) error {
	if url == "" {
		return fmt.Errorf("nothing to open")
	}

	if live {
		// Tier 1: User configured a specific player
		if l.command != "" {
			l.logger.Info("using configured player", "command", l.command, "url", url)
			return l.run(l.command, append(append([]string{}, l.args...), url)...)
		}

		// Tier 2: Try candidate players
		for _, p := range candidatePlayers {
			if _, err := l.lookPath(p.command); err != nil {
				l.logger.Debug("player not available", "player", p.command)
				continue
			}
			if err := l.run(p.command, append(append([]string{}, p.args...), url)...); err == nil {
				l.logger.Info("launched with detected player", "player", p.command, "url", url)
				return nil
			}
		}
	}

	// Tier 3: System default handler
	return l.launchDefault(url)
}

func (l *Launcher) run(command string, args ...string) error {
	return l.start(exec.Command(command, args...))
}

// launchDefault opens the URL using the system default handler
func (l *Launcher) launchDefault(url string) error {
	l.logger.Info("opening with system default", "os", runtime.GOOS, "url", url)

	switch runtime.GOOS {
	case "darwin":
		return l.run("open", url)
	case "windows":
		return l.run("cmd", "/c", "start", "", url)
	default:
		// Linux and other Unix-like systems
		return l.run("xdg-open", url)
	}
}
