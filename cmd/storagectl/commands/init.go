package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CloneWith/storageengine/pkg/config"
)

var initForce bool

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Initialize a sample configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		var err error

		if configPath != "" {
			err = config.InitConfigToPath(configPath, initForce)
			path = configPath
		} else {
			path, err = config.InitConfig(initForce)
		}
		if err != nil {
			return fmt.Errorf("initialize config: %w", err)
		}

		cmd.Printf("Configuration file created at: %s\n", path)
		cmd.Println("Edit it, then run:")
		cmd.Printf("  storagectl demo --config %s\n", path)
		return nil
	},
}

func init() {
	initConfigCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}
