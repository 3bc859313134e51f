package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func ConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			bs, err := c.Marshal()
			if err != nil {
				return err
			}
			fmt.Print(string(bs))
			return nil
		},
	}
}
