package users

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/crucial707/phonebook/cmd/cli/config"
)

// setup points the CLI at srv and at a temporary token file.
func setup(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "token")
	t.Setenv("PHONEBOOK_API_URL", srv.URL)
	t.Setenv("PHONEBOOK_TOKEN_FILE", path)
	return path
}

func run(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRegister_SavesToken(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/register" || r.Method != "POST" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"user":         map[string]string{"username": "alice", "email": "alice@x.com"},
			"access_token": "tok-1",
			"token_type":   "bearer",
		})
	}))
	defer srv.Close()
	path := setup(t, srv)

	out, err := run(t, registerCmd(), "", "--username", "alice", "--email", "alice@x.com", "--password", "pw1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if got["email"] != "alice@x.com" || got["password"] != "pw1" {
		t.Errorf("unexpected payload: %v", got)
	}
	if !strings.Contains(out, "alice@x.com") {
		t.Errorf("unexpected output: %s", out)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "tok-1" {
		t.Errorf("saved token: got %q", data)
	}
}

func TestLogin_PromptsForPassword(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-2", "token_type": "bearer"})
	}))
	defer srv.Close()
	setup(t, srv)

	if _, err := run(t, loginCmd(), "secret\n", "--email", "alice@x.com"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if got["password"] != "secret" {
		t.Errorf("password from stdin: got %q", got["password"])
	}
	token, err := config.LoadToken()
	if err != nil || token != "tok-2" {
		t.Errorf("LoadToken: %q, %v", token, err)
	}
}

func TestLogin_Form(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("username") != "alice@x.com" {
			t.Fatalf("unexpected form: %v %v", r.PostForm, err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-3", "token_type": "bearer"})
	}))
	defer srv.Close()
	setup(t, srv)

	if _, err := run(t, loginCmd(), "", "--email", "alice@x.com", "--password", "pw", "--form"); err != nil {
		t.Fatalf("login --form: %v", err)
	}
}

func TestLogin_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "incorrect email or password"})
	}))
	defer srv.Close()
	path := setup(t, srv)

	_, err := run(t, loginCmd(), "", "--email", "alice@x.com", "--password", "bad")
	if err == nil || !strings.Contains(err.Error(), "incorrect email or password") {
		t.Fatalf("expected API error, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("token file written on failed login")
	}
}

func TestLogout_RemovesToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Logout successful"})
	}))
	defer srv.Close()
	path := setup(t, srv)
	if err := config.SaveToken("tok-4"); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, logoutCmd(), "")
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if auth != "Bearer tok-4" {
		t.Errorf("Authorization: got %q", auth)
	}
	if !strings.Contains(out, "Logged out") {
		t.Errorf("unexpected output: %s", out)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("token file not removed")
	}

	out, err = run(t, logoutCmd(), "")
	if err != nil || !strings.Contains(out, "No user logged in") {
		t.Errorf("second logout: %q, %v", out, err)
	}
}
