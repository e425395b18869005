package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/fragview/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize fragview configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure fragview for your site and writes a .fragview.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
