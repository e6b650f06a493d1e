package render

import (
	"fmt"
	"os/exec"
	"runtime"
)

// browserCommand returns the launcher argv for goos, or nil when the
// platform has no known launcher.
func browserCommand(goos, target string) []string {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return []string{"xdg-open", target}
	case "darwin":
		return []string{"open", target}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler", target}
	}
	return nil
}

// OpenBrowser shows target (an http:// or file:// URL) in the default
// browser without waiting for it to exit.
func OpenBrowser(target string) error {
	argv := browserCommand(runtime.GOOS, target)
	if argv == nil {
		return fmt.Errorf("no browser launcher for %s", runtime.GOOS)
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", argv[0], err)
	}
	go cmd.Wait()
	return nil
}
