package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// siteLayouts maps marker directories to a likely template root.
var siteLayouts = []struct {
	Marker string
	Name   string
	Root   string
}{
	{Marker: "src/main/java", Name: "Maven web application", Root: "src/main/java"},
	{Marker: "src/main/webapp", Name: "Servlet webapp", Root: "src/main/webapp"},
	{Marker: "templates", Name: "Template directory", Root: "templates"},
	{Marker: "public", Name: "Static site", Root: "public"},
}

// detectRoot looks for well-known template locations in the current directory.
func detectRoot() (name string, root string) {
	for _, l := range siteLayouts {
		if info, err := os.Stat(l.Marker); err == nil && info.IsDir() {
			return l.Name, l.Root
		}
	}
	return "", "."
}

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to fragview! Let's configure your templates.")
	fmt.Println()

	layout, defaultRoot := detectRoot()
	if layout != "" {
		fmt.Printf("Detected layout: %s\n\n", layout)
	}

	cfg := DefaultConfig()

	// 1. Template root.
	rootPrompt := promptui.Prompt{
		Label:   "Directory containing your templates",
		Default: defaultRoot,
	}
	root, err := rootPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("root dir: %w", err)
	}
	cfg.RootDir = root

	// 2. Trigger attribute.
	attrPrompt := promptui.Prompt{
		Label:   "Attribute naming the fragment to include",
		Default: cfg.Attribute,
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" || strings.ContainsAny(s, " \t\"'=<>") {
				return fmt.Errorf("not a valid attribute name")
			}
			return nil
		},
	}
	attr, err := attrPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("attribute: %w", err)
	}
	cfg.Attribute = attr

	// 3. Rewrite mode.
	rewritePrompt := promptui.Select{
		Label: "How should nested fragment paths be rewritten",
		Items: []string{
			"text       : plain substitution of attribute=\" in the fragment",
			"structural : only attribute values, skipping absolute URLs",
		},
	}
	idx, _, err := rewritePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("rewrite selection: %w", err)
	}
	cfg.Rewrite = []string{RewriteText, RewriteStructural}[idx]

	// 4. Output directory.
	outputPrompt := promptui.Prompt{
		Label:   "Output directory for built previews",
		Default: cfg.OutputDir,
	}
	outputDir, err := outputPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}
	cfg.OutputDir = outputDir

	// 5. Server port.
	portPrompt := promptui.Prompt{
		Label:   "Preview server port",
		Default: strconv.Itoa(cfg.Serve.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Serve.Port, _ = strconv.Atoi(portStr)

	// 6. Extra exclude patterns.
	excludePrompt := promptui.Prompt{
		Label:   "Extra exclude patterns (comma-separated, leave blank for defaults)",
		Default: "",
	}
	excludeStr, err := excludePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	if excludeStr != "" {
		cfg.Exclude = append(cfg.Exclude, splitAndTrim(excludeStr)...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
