package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aiwave/aiwave/internal/apitest"
)

// setEnv points the client at api and a temp home.
func setEnv(t *testing.T, api *apitest.Server, store string) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("AIWAVE_HOME", home)
	t.Setenv("AIWAVE_API_URL", api.URL())
	t.Setenv("AIWAVE_TOKEN_STORE", store)
	t.Setenv("AIWAVE_TOKEN_FILE", "")
	t.Setenv("AIWAVE_DB_PATH", "")
	t.Setenv("AIWAVE_LOG_FILE", "")
	return home
}

func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(stdin), &out)
	return out.String(), err
}

func TestVersionAndHelpNeedNoConfig(t *testing.T) {
	t.Setenv("AIWAVE_TOKEN_STORE", "bogus")

	out, err := runCmd(t, "", "version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if !strings.Contains(out, "aiwave "+version) {
		t.Errorf("version output = %q", out)
	}

	out, err = runCmd(t, "", "help")
	if err != nil {
		t.Fatalf("help error: %v", err)
	}
	if !strings.Contains(out, "aiwave login") {
		t.Errorf("help output missing commands: %q", out)
	}
}

func TestUnknownCommand(t *testing.T) {
	api := apitest.NewServer(t)
	setEnv(t, api, "file")

	if _, err := runCmd(t, "", "frobnicate"); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestInvalidConfig(t *testing.T) {
	api := apitest.NewServer(t)
	setEnv(t, api, "bogus")

	_, err := runCmd(t, "", "whoami")
	if err == nil || !strings.Contains(err.Error(), "AIWAVE_TOKEN_STORE") {
		t.Fatalf("err = %v, want a config error naming the variable", err)
	}
}

func TestLoginWhoamiLogout(t *testing.T) {
	for _, store := range []string{"file", "sqlite"} {
		t.Run(store, func(t *testing.T) {
			api := apitest.NewServer(t)
			api.AddUser("ana", "ana@example.com", "pw")
			home := setEnv(t, api, store)

			out, err := runCmd(t, "pw\n", "login", "ana@example.com")
			if err != nil {
				t.Fatalf("login error: %v", err)
			}
			if !strings.Contains(out, "ana") {
				t.Errorf("login output = %q, want the username", out)
			}

			if store == "file" {
				info, err := os.Stat(filepath.Join(home, "token"))
				if err != nil {
					t.Fatalf("token file: %v", err)
				}
				if perm := info.Mode().Perm(); perm != 0o600 {
					t.Errorf("token file mode = %o, want 600", perm)
				}
			}

			out, err = runCmd(t, "", "whoami")
			if err != nil {
				t.Fatalf("whoami error: %v", err)
			}
			if !strings.Contains(out, "ana@example.com") {
				t.Errorf("whoami output = %q", out)
			}

			out, err = runCmd(t, "", "logout")
			if err != nil {
				t.Fatalf("logout error: %v", err)
			}
			if !strings.Contains(out, "Logged out.") {
				t.Errorf("logout output = %q", out)
			}

			out, err = runCmd(t, "", "logout")
			if err != nil {
				t.Fatalf("second logout error: %v", err)
			}
			if !strings.Contains(out, "Already logged out.") {
				t.Errorf("second logout output = %q", out)
			}

			if _, err := runCmd(t, "", "whoami"); err == nil {
				t.Error("whoami succeeded after logout")
			}
		})
	}
}

func TestLoginPromptsForEmail(t *testing.T) {
	api := apitest.NewServer(t)
	api.AddUser("ana", "ana@example.com", "pw")
	setEnv(t, api, "file")

	out, err := runCmd(t, "ana@example.com\npw\n", "login")
	if err != nil {
		t.Fatalf("login error: %v", err)
	}
	if !strings.Contains(out, "Email: ") || !strings.Contains(out, "Password: ") {
		t.Errorf("prompts missing from %q", out)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	api := apitest.NewServer(t)
	api.AddUser("ana", "ana@example.com", "pw")
	setEnv(t, api, "file")

	_, err := runCmd(t, "nope\n", "login", "ana@example.com")
	if err == nil || err.Error() != "Invalid credentials!" {
		t.Fatalf("err = %v, want the server message", err)
	}

	if _, err := runCmd(t, "", "whoami"); err == nil {
		t.Error("failed login left a session behind")
	}
}

func TestWhoamiProfileUnavailable(t *testing.T) {
	api := apitest.NewServer(t)
	api.AddUser("ana", "ana@example.com", "pw")
	setEnv(t, api, "file")

	if _, err := runCmd(t, "pw\n", "login", "ana@example.com"); err != nil {
		t.Fatalf("login error: %v", err)
	}
	api.FailUserWith(http.StatusInternalServerError)

	_, err := runCmd(t, "", "whoami")
	if err == nil || !strings.Contains(err.Error(), "profile") {
		t.Fatalf("err = %v, want profile error", err)
	}
}

func TestPrompterTrimsAndHandlesEOF(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("  ana@example.com  \nlast"), &out)

	got, err := p.line("Email: ")
	if err != nil || got != "ana@example.com" {
		t.Fatalf("line() = %q, %v", got, err)
	}
	got, err = p.password("Password: ")
	if err != nil || got != "last" {
		t.Fatalf("password() without newline = %q, %v", got, err)
	}
	if _, err := p.line("More: "); err == nil {
		t.Error("expected error at EOF")
	}
}
