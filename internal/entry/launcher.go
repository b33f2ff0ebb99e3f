package entry

import (
	"fmt"
	"os/exec"

	"github.com/aidanlsb/favs/internal/shellquote"
)

// Launcher starts programs on behalf of entries.
type Launcher interface {
	// Exec starts argv detached from the caller.
	Exec(argv []string) error
	// Open hands a URL or path to the desktop's default handler.
	Open(target string) error
}

// SystemLauncher starts processes with os/exec and opens targets with xdg-open.
type SystemLauncher struct{}

// Exec implements Launcher.
func (SystemLauncher) Exec(argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("empty command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", shellquote.Join(argv), err)
	}
	// Reap in the background; the launched program outlives the call.
	go func() { _ = cmd.Wait() }()
	return nil
}

// Open implements Launcher.
func (l SystemLauncher) Open(target string) error {
	return l.Exec([]string{"xdg-open", target})
}

func launcherOrDefault(l Launcher) Launcher {
	if l == nil {
		return SystemLauncher{}
	}
	return l
}
