package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "graphbase",
	Short: "versioned record and graph tool",
	Example: `graphbase serve -p 8080
graphbase db migrate
graphbase db seed
graphbase record submit -t people -d '{"name": "Alice"}'
graphbase record get -t people -i 1
graphbase record list -t people
graphbase record versions -t people -i 1
graphbase record delete -t people -i 1
graphbase link sync -t organisation_people_links -s organisation_id -c person_id -i 1 -g 1,2
graphbase graph export
graphbase options -t people -l name`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(dbCmd)
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}
