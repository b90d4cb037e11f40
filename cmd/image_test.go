package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocJSON = `{
	"images": [
		{
			"id": "sha256:abc123",
			"repoTag": "registry.example.com/app:1.0",
			"packages": [
				{"pkgsType": "package", "pkgs": [
					{"name": "B", "version": "2.0", "license": "GPL"},
					{"name": "A", "version": "1.0", "license": "MIT"},
					{"name": "C", "version": "0.5", "license": "BSD"}
				]},
				{"pkgsType": "python", "pkgs": []}
			],
			"binaries": [
				{"name": "sh", "path": "/bin/sh", "md5": "eeee", "cveCount": 1}
			],
			"cveVulnerabilities": [
				{"cve": "CVE-2021-1", "packageName": "openssl", "packageVersion": "1.1.1",
				 "severity": "High", "status": "fixed", "link": "https://x/1"}
			]
		}
	]
}`

const multiImageDocJSON = `{
	"images": [
		{"id": "sha256:abc123", "repoTag": "registry.example.com/app:1.0"},
		{"id": "sha256:def456", "repoTag": "registry.example.com/app:2.0"}
	]
}`

// runCommand executes the CLI with args and returns captured stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd := newRootCmd()
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeDocFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "images.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func clearConsoleEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"TWISTLOCK_URL", "TWISTLOCK_USER", "TWISTLOCK_PASSWORD", "TWISTLOCK_TOKEN"} {
		t.Setenv(key, "")
	}
}

func TestFileCommandPackages(t *testing.T) {
	path := writeDocFile(t, testDocJSON)

	out, err := runCommand(t, "image", "file", path, "registry.example.com/app:1.0", "package")
	require.NoError(t, err)

	want := strings.Join([]string{
		"NAME VERSION LICENSE",
		"",
		"A    1.0     MIT    ",
		"B    2.0     GPL    ",
		"C    0.5     BSD    ",
	}, "\n") + "\n"
	assert.Equal(t, want, out)
}

func TestFileCommandBySha(t *testing.T) {
	path := writeDocFile(t, testDocJSON)

	out, err := runCommand(t, "image", "file", path, "sha256:abc123", "list")
	require.NoError(t, err)
	assert.Equal(t, "package python\n", out)
}

func TestFileCommandImages(t *testing.T) {
	path := writeDocFile(t, multiImageDocJSON)

	out, err := runCommand(t, "image", "file", path, "-", "images")
	require.NoError(t, err)
	assert.Equal(t, "sha256:abc123 registry.example.com/app:1.0\nsha256:def456 registry.example.com/app:2.0\n", out)
}

func TestFileCommandColumnsOverride(t *testing.T) {
	path := writeDocFile(t, testDocJSON)

	out, err := runCommand(t, "image", "file", path, "sha256:abc123", "package",
		"--columns", "name=NAME", "--sort-key", "name")
	require.NoError(t, err)
	assert.Equal(t, "NAME\n\nA   \nB   \nC   \n", out)
}

func TestFileCommandUnknownSearchType(t *testing.T) {
	path := writeDocFile(t, testDocJSON)

	_, err := runCommand(t, "image", "file", path, "sha256:abc123", "bogus")
	require.ErrorIs(t, err, errUnknownSearchType)
}

func TestFileCommandImageNotFound(t *testing.T) {
	path := writeDocFile(t, testDocJSON)

	_, err := runCommand(t, "image", "file", path, "no-such-tag", "package")
	require.Error(t, err)
	assert.Equal(t, exitNotFound, exitCode(err))
}

func TestFileCommandMissingFile(t *testing.T) {
	_, err := runCommand(t, "image", "file", filepath.Join(t.TempDir(), "absent.json"), "tag", "package")
	require.Error(t, err)
	assert.Equal(t, exitFailure, exitCode(err))
}

func TestSearchCommand(t *testing.T) {
	clearConsoleEnv(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "admin", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "registry.example.com/app:1.0", r.URL.Query().Get("search"))
		w.Write([]byte(testDocJSON)) //nolint:errcheck
	}))
	defer ts.Close()

	out, err := runCommand(t, "image", "search", "registry.example.com/app:1.0", "package",
		"--twistlock-url", ts.URL,
		"--twistlock-user", "admin",
		"--twistlock-password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME VERSION LICENSE")
}

func TestSearchCommandEnvCredentials(t *testing.T) {
	clearConsoleEnv(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, _ := r.BasicAuth()
		assert.Equal(t, "env-user", user)
		assert.Equal(t, "env-pass", pass)
		w.Write([]byte(testDocJSON)) //nolint:errcheck
	}))
	defer ts.Close()

	t.Setenv("TWISTLOCK_URL", ts.URL)
	t.Setenv("TWISTLOCK_USER", "env-user")
	t.Setenv("TWISTLOCK_PASSWORD", "env-pass")

	out, err := runCommand(t, "image", "search", "sha256:abc123", "list")
	require.NoError(t, err)
	assert.Equal(t, "package python\n", out)
}

func TestSearchCommandMultipleMatches(t *testing.T) {
	clearConsoleEnv(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(multiImageDocJSON)) //nolint:errcheck
	}))
	defer ts.Close()

	out, err := runCommand(t, "image", "search", "app", "package",
		"--twistlock-url", ts.URL,
		"--twistlock-user", "u",
		"--twistlock-password", "p")
	require.NoError(t, err)
	assert.Equal(t, "Multiple images match: sha256:abc123 sha256:def456\n", out)
}

func TestSearchCommandFetchFailure(t *testing.T) {
	clearConsoleEnv(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer ts.Close()

	_, err := runCommand(t, "image", "search", "app", "package",
		"--twistlock-url", ts.URL,
		"--twistlock-user", "u",
		"--twistlock-password", "p")
	require.Error(t, err)
	assert.ErrorContains(t, err, "unexpected status code: 403")
	assert.Equal(t, exitFailure, exitCode(err))
}
