package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/jaxxstorm/monover"
	"github.com/m-mizutani/clog"
)

// Version will be set by build process
var Version = "dev"

type CLI struct {
	Project     []string `short:"p" help:"Only resolve these projects (default: every project in the manifest)"`
	Repo        string   `short:"r" help:"Repository path (default: current directory)"`
	Config      string   `short:"c" default:"monover.yaml" help:"Path to the project manifest"`
	TagPrefix   string   `help:"Tag prefix override (e.g., 'v')"`
	JSON        bool     `short:"j" help:"Output as JSON"`
	Debug       bool     `help:"Enable diagnostic logging"`
	ShowVersion bool     `help:"Show version information" name:"version"`
}

func main() {
	var cli CLI

	kong.Parse(&cli,
		kong.Name("monover"),
		kong.Description("Compute deterministic semantic versions for monorepo projects from git metadata"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)

	err := cli.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (c *CLI) Run() error {
	if c.ShowVersion {
		return c.showVersion()
	}
	return c.resolveVersions()
}

func (c *CLI) showVersion() error {
	versionInfo := map[string]string{
		"version": Version,
		"name":    "monover",
	}

	if c.JSON {
		return json.NewEncoder(os.Stdout).Encode(versionInfo)
	}

	fmt.Printf("monover version %s\n", Version)
	return nil
}

func (c *CLI) resolveVersions() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	projects := selectProjects(cfg.Projects, c.Project)
	if len(projects) == 0 {
		return fmt.Errorf("no matching projects in manifest")
	}

	repoPath := c.Repo
	if repoPath == "" {
		repoPath, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}
	}

	// Outside a git repository CI still needs some version.
	repo, err := monover.OpenRepository(repoPath)
	if err != nil {
		return c.emit(fallbackResolutions(projects))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	calc := monover.NewCalculator(monover.NewGitView(repo), cfg).WithLogger(c.logger())

	results, err := calc.ResolveAll(ctx, projects)
	if err != nil {
		return err
	}

	return c.emit(results)
}

func (c *CLI) loadConfig() (monover.Config, error) {
	cfg, err := monover.LoadConfig(c.Config)
	if err != nil {
		// A missing default manifest means a single-project repository.
		if errors.Is(err, os.ErrNotExist) && c.Config == "monover.yaml" {
			cfg = monover.DefaultConfig()
		} else {
			return monover.Config{}, err
		}
	}

	if c.TagPrefix != "" {
		cfg.TagPrefix = c.TagPrefix
	}
	if c.Debug {
		cfg.Debug = true
	}

	return cfg, nil
}

func (c *CLI) logger() *slog.Logger {
	if !c.Debug {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return slog.New(clog.New(
		clog.WithWriter(os.Stderr),
		clog.WithLevel(slog.LevelDebug),
		clog.WithSource(false),
	))
}

func (c *CLI) emit(results []monover.Resolution) error {
	if c.JSON {
		out := make(map[string]string, len(results))
		for _, res := range results {
			if res.Err != nil {
				continue
			}
			out[res.Project] = res.Version.String()
		}
		if err := json.NewEncoder(os.Stdout).Encode(out); err != nil {
			return err
		}
		return failedProjects(results)
	}

	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", res.Project, res.Err)
			continue
		}
		if len(results) == 1 {
			fmt.Println(res.Version)
		} else {
			fmt.Printf("%s %s\n", res.Project, res.Version)
		}
	}

	return failedProjects(results)
}

func failedProjects(results []monover.Resolution) error {
	var failed []string
	for _, res := range results {
		if res.Err != nil {
			failed = append(failed, res.Project)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to resolve: %s", strings.Join(failed, ", "))
	}
	return nil
}

// selectProjects filters the manifest down to the requested project names.
// An empty filter keeps everything.
func selectProjects(projects []monover.Project, names []string) []monover.Project {
	if len(names) == 0 {
		return projects
	}

	var selected []monover.Project
	for _, project := range projects {
		for _, name := range names {
			if strings.EqualFold(project.Name, name) {
				selected = append(selected, project)
				break
			}
		}
	}
	return selected
}

func fallbackResolutions(projects []monover.Project) []monover.Resolution {
	results := make([]monover.Resolution, 0, len(projects))
	for _, project := range projects {
		results = append(results, monover.Resolution{
			Project: project.Name,
			Version: monover.FallbackVersion(),
		})
	}
	return results
}
