package adapter

import (
	"errors"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
)

func systemOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "cmd"
	default:
		return "xdg-open"
	}
}

func TestLauncherLaunch(t *testing.T) {
	const url = "https://kick.com/someone"

	tests := []struct {
		name      string
		cfg       PlayerConfig
		installed []string
		live      bool
		wantCmd   string
		wantArgs  []string
	}{
		{
			name:     "configured player for live",
			cfg:      PlayerConfig{Command: "vlc", Args: []string{"--fullscreen"}},
			live:     true,
			wantCmd:  "vlc",
			wantArgs: []string{"--fullscreen", url},
		},
		{
			name:      "detected player",
			installed: []string{"mpv"},
			live:      true,
			wantCmd:   "mpv",
			wantArgs:  []string{url},
		},
		{
			name:      "streamlink preferred",
			installed: []string{"mpv", "streamlink"},
			live:      true,
			wantCmd:   "streamlink",
			wantArgs:  []string{"--player-passthrough", "hls", url},
		},
		{
			name:    "no player falls back to browser",
			live:    true,
			wantCmd: systemOpener(),
		},
		{
			name:      "offline always uses browser",
			cfg:       PlayerConfig{Command: "vlc"},
			installed: []string{"mpv"},
			live:      false,
			wantCmd:   systemOpener(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var started []*exec.Cmd
			l := NewLauncher(tt.cfg, NullLogger())
			l.lookPath = func(file string) (string, error) {
				if slices.Contains(tt.installed, file) {
					return "/usr/bin/" + file, nil
				}
				return "", exec.ErrNotFound
			}
			l.start = func(cmd *exec.Cmd) error {
				started = append(started, cmd)
				return nil
			}

			if err := l.Launch(url, tt.live); err != nil {
				t.Fatalf("Launch() error = %v", err)
			}
			if len(started) != 1 {
				t.Fatalf("started %d commands, want 1", len(started))
			}

			cmd := started[0]
			if got := filepath.Base(cmd.Args[0]); got != tt.wantCmd {
				t.Errorf("command = %q, want %q", got, tt.wantCmd)
			}
			if tt.wantArgs != nil && !slices.Equal(cmd.Args[1:], tt.wantArgs) {
				t.Errorf("args = %v, want %v", cmd.Args[1:], tt.wantArgs)
			}
			if cmd.Args[len(cmd.Args)-1] != url {
				t.Errorf("url should be the last argument, got %v", cmd.Args)
			}
		})
	}
}

func TestLauncherFallsThroughFailedPlayer(t *testing.T) {
	var started []string
	l := NewLauncher(PlayerConfig{}, NullLogger())
	l.lookPath = func(file string) (string, error) { return "/usr/bin/" + file, nil }
	l.start = func(cmd *exec.Cmd) error {
		started = append(started, cmd.Args[0])
		if cmd.Args[0] == "streamlink" {
			return errors.New("boom")
		}
		return nil
	}

	if err := l.Launch("https://kick.com/x", true); err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	if !slices.Equal(started, []string{"streamlink", "mpv"}) {
		t.Errorf("started %v, want streamlink then mpv", started)
	}
}

func TestLauncherRejectsEmptyURL(t *testing.T) {
	l := NewLauncher(PlayerConfig{}, NullLogger())
	if err := l.Launch("", true); err == nil {
		t.Error("Launch(\"\") should fail")
	}
}
