package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/emrgen/graphbase"
)

const (
	configFileName = "graphbase"
	configFileDir  = "./.tmp"
)

var contextCommand = &cobra.Command{
	Use:   "context",
	Short: "context commands",
}

func init() {
	rootCmd.AddCommand(contextCommand)
	contextCommand.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	contextCommand.AddCommand(setContextCommand())
	contextCommand.AddCommand(currentContextCommand())
	contextCommand.AddCommand(resetContextCommand())
}

type Context struct {
	Server string `json:"server"`
	Actor  int64  `json:"actor"`
}

// saves the context info to the config file in ./.tmp
func setContextCommand() *cobra.Command {
	var server string
	var actor int64
	command := &cobra.Command{
		Use:   "set",
		Short: "set context",
		Run: func(cmd *cobra.Command, args []string) {
			if server == "" {
				color.Red(`missing: --server`)
				return
			}

			writeContext(Context{
				Server: server,
				Actor:  actor,
			})
			fmt.Println("context saved")
		},
	}

	command.Flags().StringVarP(&server, "server", "s", "", "server address, eg. localhost:8080")
	command.Flags().Int64VarP(&actor, "actor", "a", 0, "acting user id")
	command.Flags().SortFlags = false

	return command
}

func currentContextCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "current",
		Short: "current context",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := readContext()
			printField("Server", serverAddress(cfg))
			printField("Actor", strconv.FormatInt(cfg.Actor, 10))
		},
	}

	return command
}

func resetContextCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "reset",
		Short: "reset context",
		Run: func(cmd *cobra.Command, args []string) {
			writeContext(Context{})
			fmt.Println("context reset")
		},
	}

	return command
}

func writeContext(context Context) {
	ensureContextFile()

	viper.SetConfigName(configFileName)
	viper.AddConfigPath(configFileDir)
	viper.SetConfigType("yml")
	viper.Set("context", context)

	if err := viper.WriteConfig(); err != nil {
		fmt.Println("error writing config file: ", err)
	}
}

func readContext() Context {
	var ctx Context

	ensureContextFile()

	viper.SetConfigName(configFileName)
	viper.AddConfigPath(configFileDir)
	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("error reading config file: ", err)
	}

	if err := viper.UnmarshalKey("context", &ctx); err != nil {
		fmt.Println("error unmarshalling config file: ", err)
	}

	return ctx
}

// creates the config file if it doesn't exist
func ensureContextFile() {
	if _, err := os.Stat(configFileDir + "/" + configFileName + ".yml"); os.IsNotExist(err) {
		if err := os.MkdirAll(configFileDir, os.ModePerm); err != nil {
			fmt.Println("error creating config dir: ", err)
			return
		}
		file, err := os.Create(configFileDir + "/" + configFileName + ".yml")
		if err != nil {
			fmt.Println("error creating config file: ", err)
			return
		}
		err = file.Close()
		if err != nil {
			panic(err)
		}
	}
}

// serverAddress falls back to the local default when no context is set.
func serverAddress(cfg Context) string {
	if cfg.Server == "" {
		return "localhost:8080"
	}

	return cfg.Server
}

// newClient dials the configured server as the configured acting user.
func newClient() (graphbase.Client, error) {
	cfg := readContext()
	return graphbase.NewClient(serverAddress(cfg), graphbase.WithActor(cfg.Actor))
}
