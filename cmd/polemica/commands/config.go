package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polemica/polemica/config"
	"github.com/polemica/polemica/errors"
)

// ConfigCmd inspects resolved configuration
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect Polemica configuration",
	Long: `Inspect the resolved configuration.

Values are resolved in priority order: environment variables (POLEMICA_*),
the project polemica.toml, then built-in defaults.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	RunE:  runConfigShow,
}

func init() {
	ConfigCmd.AddCommand(configShowCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	output, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to format configuration")
	}

	fmt.Println(string(output))
	if configFile := config.GetViper().ConfigFileUsed(); configFile != "" {
		fmt.Printf("\nLoaded from: %s\n", configFile)
	} else {
		fmt.Println("\nNo config file found, using defaults")
	}
	return nil
}
