package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/emrgen/graphbase"
)

func init() {
	rootCmd.AddCommand(optionsCmd())
}

func optionsCmd() *cobra.Command {
	var table string
	var valueCol string
	var labelCol string
	var exclude int64

	var required = []string{"table"}

	command := &cobra.Command{
		Use:     "options",
		Short:   "list selection options for a table",
		Example: "graphbase options -t people -l name",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client, err := newClient()
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			options, err := client.ListOptions(context.Background(), table, graphbase.OptionQuery{
				ValueCol:  valueCol,
				LabelCol:  labelCol,
				ExcludeID: exclude,
			})
			if err != nil {
				logrus.Error(err)
				return
			}

			writer := tablewriter.NewWriter(os.Stdout)
			writer.Header("Value", "Label")
			for _, opt := range options {
				writer.Append(fmt.Sprint(opt.Value), opt.Label)
			}

			if err := writer.Render(); err != nil {
				logrus.Error(err)
			}
		},
	}

	command.Flags().StringVarP(&table, "table", "t", "", "table name (required)")
	command.Flags().StringVarP(&valueCol, "value", "v", "", "column used as the option value, defaults to id")
	command.Flags().StringVarP(&labelCol, "label", "l", "", "column used as the option label")
	command.Flags().Int64VarP(&exclude, "exclude", "e", 0, "record id to exclude")

	command.Flags().SortFlags = false

	return command
}
