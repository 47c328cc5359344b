package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/tip/am"
	"github.com/teranos/tip/errors"
	"github.com/teranos/tip/sym"
	"github.com/teranos/tip/tooltip"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: sym.AM + " Manage tip configuration",
	Long: sym.AM + ` am — Manage tip configuration ("I am")

Display and check tip configuration settings.

Configuration sources (in order of precedence):
1. Environment variables (TIP_* prefix)
2. Project config (./am.toml, searched upward)
3. User config (~/.tip/am.toml)
4. System config (/etc/tip/am.toml)
5. Default values

Examples:
  tip am show                           # Show current configuration
  tip am show --format json             # Show configuration in JSON format
  tip am get loop.frame_interval_ms     # Get specific config value
  tip am validate                       # Validate current configuration`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the current tip configuration from all sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := am.Load()
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}
		return writeConfig(cmd.OutOrStdout(), cfg, configFormat)
	},
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., loop.frame_interval_ms, tooltip.defaults.delay)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		if !am.IsSet(key) {
			return errors.NewNotFoundError("configuration key %q not found", key)
		}
		fmt.Fprintln(cmd.OutOrStdout(), am.Get(key))
		return nil
	},
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Long:  "Validate the tip configuration, tooltip defaults included",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := am.Load()
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}
		if err := validateConfig(cfg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration is valid")
		return nil
	},
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	Long: `Show every effective setting grouped by the source it came from.

Sources are listed lowest precedence first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		intro, err := am.GetConfigIntrospection()
		if err != nil {
			return errors.Wrap(err, "failed to get config introspection")
		}
		writeSources(cmd.OutOrStdout(), intro)
		return nil
	},
}

var configFormat string

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
}

func writeConfig(w io.Writer, cfg *am.Config, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Fprintln(w, string(data))

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Fprintf(w, "# tip configuration\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		fmt.Fprintf(w, "# tip configuration\n%s", string(data))

	default:
		err := errors.NewInvalidRequestError("unsupported format: %s", format)
		return errors.WithHint(err, "supported: toml, json, yaml")
	}
	return nil
}

// validateConfig checks the structure and that the tooltip defaults resolve
// to valid options
func validateConfig(cfg *am.Config) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	if err := tooltip.New(tooltip.Env{}).SetDefaults(tooltip.Props(cfg.Tooltip.Defaults)); err != nil {
		return errors.Wrap(err, "tooltip.defaults")
	}
	return nil
}

var sourceOrder = []am.ConfigSource{
	am.SourceDefault,
	am.SourceSystem,
	am.SourceUser,
	am.SourceProject,
	am.SourceEnvironment,
}

func writeSources(w io.Writer, intro *am.ConfigIntrospection) {
	bySource := make(map[am.ConfigSource][]am.SettingInfo)
	for _, s := range intro.Settings {
		bySource[s.Source] = append(bySource[s.Source], s)
	}

	for _, source := range sourceOrder {
		settings := bySource[source]
		if len(settings) == 0 {
			continue
		}
		sort.Slice(settings, func(i, j int) bool { return settings[i].Key < settings[j].Key })
		fmt.Fprintf(w, "%s (%d)\n", source, len(settings))
		for _, s := range settings {
			if s.SourcePath != "" && source != am.SourceDefault {
				fmt.Fprintf(w, "  %s = %v  [%s]\n", s.Key, s.Value, s.SourcePath)
				continue
			}
			fmt.Fprintf(w, "  %s = %v\n", s.Key, s.Value)
		}
	}
}
