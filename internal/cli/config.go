package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/memodesk/memodesk/internal/config"
	apperrors "github.com/memodesk/memodesk/internal/errors"
	"github.com/memodesk/memodesk/internal/event"
	"github.com/memodesk/memodesk/internal/telemetry"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and modifying memodesk.yaml.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value (dot notation, e.g. storage.driver)",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file and its hooks",
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configValidateCmd)
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}
	return config.FileName
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintln(w, "----------------------")
	fmt.Fprintln(w, string(out))

	if _, err := os.Stat(configPath()); err == nil {
		fmt.Fprintf(w, "Config file: %s\n", configPath())
	} else {
		fmt.Fprintln(w, "Config file: none (defaults)")
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]
	path := configPath()

	cfg := map[string]interface{}{}
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("failed to read config file: %w", err)
	}

	setNestedValue(cfg, key, parseScalar(value))

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Refuse to write a file that would not load.
	if _, err := config.Parse(out); err != nil {
		return err
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	path := configPath()

	cfg, err := config.LoadFile(path)
	if err != nil {
		fmt.Fprintf(w, "%s: %v\n", path, err)
		if sug := apperrors.Suggestion(err); sug != "" {
			fmt.Fprintf(w, "  → %s\n", sug)
		}
		return fmt.Errorf("validation failed")
	}
	fmt.Fprintf(w, "%s: OK\n", path)

	hooks, err := event.BuildHooks(cfg.Hooks, telemetry.NewLoggerWith("error", "text", io.Discard))
	if err != nil {
		fmt.Fprintf(w, "hooks: %v\n", err)
		return fmt.Errorf("validation failed")
	}
	fmt.Fprintf(w, "hooks: %d active\n", len(hooks))

	fmt.Fprintln(w, "\nConfiguration valid.")
	return nil
}

// parseScalar keeps ports numeric and flags boolean in the written YAML.
func parseScalar(v string) interface{} {
	var out interface{}
	if err := yaml.Unmarshal([]byte(v), &out); err == nil {
		switch out.(type) {
		case int, bool:
			return out
		}
	}
	return v
}

func setNestedValue(m map[string]interface{}, key string, value interface{}) {
	parts := strings.Split(key, ".")
	current := m
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
