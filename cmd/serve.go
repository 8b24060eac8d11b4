package cmd

import (
	"github.com/emrgen/graphbase/internal/server"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "serve",
		Short: "start the graphbase server",
		Run: func(cmd *cobra.Command, args []string) {
			port, _ := cmd.Flags().GetString("port")
			server.NewServer(port).Start()
		},
	}

	command.Flags().StringP("port", "p", "8080", "port to run the server on")

	return command
}
