package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/jaxxstorm/monover"
	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	runErr := fn()

	w.Close()
	os.Stdout = oldStdout

	output, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, runErr)

	return string(output)
}

func TestCLIShowVersion(t *testing.T) {
	cli := &CLI{ShowVersion: true}

	output := captureStdout(t, cli.showVersion)
	require.Contains(t, output, "monover version")
	require.Contains(t, output, "dev") // Default version should be "dev"
}

func TestCLIShowVersionJSON(t *testing.T) {
	cli := &CLI{ShowVersion: true, JSON: true}

	output := captureStdout(t, cli.showVersion)

	var versionInfo map[string]string
	require.NoError(t, json.Unmarshal([]byte(output), &versionInfo))
	require.Equal(t, "dev", versionInfo["version"])
	require.Equal(t, "monover", versionInfo["name"])
}

func TestCLIResolveNonGitRepo(t *testing.T) {
	cli := &CLI{Repo: t.TempDir(), Config: "monover.yaml"}

	output := captureStdout(t, cli.resolveVersions)
	require.Equal(t, "0.0.0-dev.0", strings.TrimSpace(output))
}

func TestCLIResolveNonGitRepoJSON(t *testing.T) {
	cli := &CLI{Repo: t.TempDir(), Config: "monover.yaml", JSON: true}

	output := captureStdout(t, cli.resolveVersions)

	var versions map[string]string
	require.NoError(t, json.Unmarshal([]byte(output), &versions))
	require.Equal(t, "0.0.0-dev.0", versions["root"])
}

func TestCLIMissingExplicitConfig(t *testing.T) {
	cli := &CLI{Config: "definitely-not-there.yaml"}

	err := cli.resolveVersions()
	require.Error(t, err)
}

func TestSelectProjects(t *testing.T) {
	projects := []monover.Project{
		{Name: "api", Path: "services/api"},
		{Name: "web", Path: "services/web"},
		{Name: "core", Path: "libs/core"},
	}

	tests := []struct {
		name     string
		filter   []string
		expected []string
	}{
		{"No filter keeps everything", nil, []string{"api", "web", "core"}},
		{"Single project", []string{"web"}, []string{"web"}},
		{"Case-insensitive", []string{"API"}, []string{"api"}},
		{"Multiple projects", []string{"core", "api"}, []string{"api", "core"}},
		{"Unknown project", []string{"nope"}, nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			selected := selectProjects(projects, test.filter)

			var names []string
			for _, project := range selected {
				names = append(names, project.Name)
			}
			require.Equal(t, test.expected, names)
		})
	}
}

func TestFallbackResolutions(t *testing.T) {
	results := fallbackResolutions([]monover.Project{
		{Name: "api", Path: "services/api"},
		{Name: "core", Path: "libs/core"},
	})

	require.Len(t, results, 2)
	for _, res := range results {
		require.NoError(t, res.Err)
		require.Equal(t, "0.0.0-dev.0", res.Version.String())
	}
}
