// Package browser opens links in the user's default browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// command builds the launcher for goos. It is split out for tests.
func command(goos, target string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", target), nil
	case "linux":
		return exec.Command("xdg-open", target), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target), nil
	default:
		return nil, fmt.Errorf("unsupported OS: %s", goos)
	}
}

// Validate accepts only absolute http and https URLs. Profile fields come
// from the server and must not reach the launcher as a file path or flag.
func Validate(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("browser: parse %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("browser: refusing scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("browser: %q has no host", raw)
	}
	return nil
}

// Open opens the specified URL in the user's default browser.
func Open(target string) error {
	if err := Validate(target); err != nil {
		return err
	}
	cmd, err := command(runtime.GOOS, target)
	if err != nil {
		return err
	}
	return cmd.Start()
}
