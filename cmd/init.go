package cmd

import (
	"os"

	"github.com/esemi/travian-manager/internal/setup"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the bot with interactive setup",
	Long:  `Run the first-time setup wizard to write the account and bridge settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		_, err = setup.NewWizard(os.Stdin, os.Stdout).Run(path)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
