package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/emrgen/graphbase"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "manage versioned records",
	Example: `  graphbase record submit -t people -d '{"name": "Alice", "role": "Data Scientist"}'
  graphbase record get -t people -i 1
  graphbase record list -t people --deleted
  graphbase record versions -t people -i 1
  graphbase record delete -t people -i 1`,
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	recordCmd.AddCommand(submitRecordCmd())
	recordCmd.AddCommand(getRecordCmd())
	recordCmd.AddCommand(listRecordsCmd())
	recordCmd.AddCommand(listRecordVersionsCmd())
	recordCmd.AddCommand(deleteRecordCmd())
}

func submitRecordCmd() *cobra.Command {
	var table string
	var data string

	var required = []string{"table", "data"}

	command := &cobra.Command{
		Use:     "submit",
		Short:   "submit a record version",
		Long:    `submit a new record, or a new version of an existing record when the data carries an id`,
		Example: `graphbase record submit -t people -d '{"name": "Alice"}'`,
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			var fields map[string]any
			err := json.Unmarshal([]byte(data), &fields)
			if err != nil {
				logrus.Error("invalid data, expected a json object")
				return
			}

			client, err := newClient()
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			res, err := client.SubmitRecord(context.Background(), table, fields)
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("record %s with id: %d, version: %d", res.Status, res.ID, res.Version)
		},
	}

	command.Flags().StringVarP(&table, "table", "t", "", "table name (required)")
	command.Flags().StringVarP(&data, "data", "d", "", "column values as json (required)")

	command.Flags().SortFlags = false

	return command
}

func getRecordCmd() *cobra.Command {
	var table string
	var id int64
	var version int64

	var required = []string{"table", "id"}

	command := &cobra.Command{
		Use:     "get",
		Short:   "get the current version of a record",
		Example: "graphbase record get -t people -i 1 -v 2",
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

			var rec graphbase.Record
			if version > 0 {
				rec, err = client.GetRecordVersion(context.Background(), table, id, version)
			} else {
				rec, err = client.GetRecord(context.Background(), table, id)
			}
			if err != nil {
				logrus.Error(err)
				return
			}

			writer := tablewriter.NewWriter(os.Stdout)
			writer.Header("ID", "Version", "Status", "Created By")
			writer.Append(formatInt(rec.Int64("id")), formatInt(rec.Int64("version")), rec.String("status"), formatInt(rec.Int64("created_by")))
			if err := writer.Render(); err != nil {
				logrus.Error(err)
				return
			}

			for _, col := range payloadColumns(rec) {
				printField(col, rec.String(col))
			}
		},
	}

	command.Flags().StringVarP(&table, "table", "t", "", "table name (required)")
	command.Flags().Int64VarP(&id, "id", "i", 0, "record id (required)")
	command.Flags().Int64VarP(&version, "version", "v", 0, "explicit version, 0 means current")

	command.Flags().SortFlags = false

	return command
}

func listRecordsCmd() *cobra.Command {
	var table string
	var deleted bool

	var required = []string{"table"}

	command := &cobra.Command{
		Use:     "list",
		Short:   "list the current version of every record in a table",
		Example: "graphbase record list -t people --deleted",
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

			records, err := client.ListRecords(context.Background(), table, deleted)
			if err != nil {
				logrus.Error(err)
				return
			}

			writer := tablewriter.NewWriter(os.Stdout)
			writer.Header("ID", "Version", "Status", "Name", "Timestamp")
			for _, rec := range records {
				writer.Append(formatInt(rec.Int64("id")), formatInt(rec.Int64("version")), rec.String("status"), rec.String("name"), rec.String("timestamp"))
			}

			if err := writer.Render(); err != nil {
				logrus.Error(err)
			}
		},
	}

	command.Flags().StringVarP(&table, "table", "t", "", "table name (required)")
	command.Flags().BoolVarP(&deleted, "deleted", "x", false, "include soft deleted records")

	command.Flags().SortFlags = false

	return command
}

func listRecordVersionsCmd() *cobra.Command {
	var table string
	var id int64

	var required = []string{"table", "id"}

	command := &cobra.Command{
		Use:     "versions",
		Short:   "list the version history of a record",
		Example: "graphbase record versions -t people -i 1",
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

			versions, err := client.ListRecordVersions(context.Background(), table, id)
			if err != nil {
				logrus.Error(err)
				return
			}

			writer := tablewriter.NewWriter(os.Stdout)
			writer.Header("Version", "Status", "Timestamp", "Created By")
			for i, rec := range versions {
				version := formatInt(rec.Int64("version"))
				if i == len(versions)-1 {
					version += " (current)"
				} else {
					version = fmt.Sprintf("%-10s", version)
				}
				writer.Append(version, rec.String("status"), rec.String("timestamp"), formatInt(rec.Int64("created_by")))
			}

			if err := writer.Render(); err != nil {
				logrus.Error(err)
			}
		},
	}

	command.Flags().StringVarP(&table, "table", "t", "", "table name (required)")
	command.Flags().Int64VarP(&id, "id", "i", 0, "record id (required)")

	command.Flags().SortFlags = false

	return command
}

func deleteRecordCmd() *cobra.Command {
	var table string
	var id int64

	var required = []string{"table", "id"}

	command := &cobra.Command{
		Use:     "delete",
		Short:   "soft delete a record",
		Example: "graphbase record delete -t people -i 1",
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

			err = client.DeleteRecord(context.Background(), table, id)
			if err != nil {
				logrus.Error(err)
				return
			}

			color.Green("record deleted")
		},
	}

	command.Flags().StringVarP(&table, "table", "t", "", "table name (required)")
	command.Flags().Int64VarP(&id, "id", "i", 0, "record id (required)")

	command.Flags().SortFlags = false

	return command
}

// payloadColumns returns the non system columns of a record in a stable
// order for display.
func payloadColumns(rec graphbase.Record) []string {
	system := map[string]bool{
		"id":         true,
		"version":    true,
		"status":     true,
		"timestamp":  true,
		"created_by": true,
	}

	var cols []string
	for col := range rec {
		if !system[col] {
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)

	return cols
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func printField(label, value string) {
	color.Set(color.FgCyan)
	fmt.Print(label)
	color.Unset()
	fmt.Printf(": %s\n", value)
}

// checkMissingFlags checks if the required flags are set and returns ok if they are set
func checkMissingFlags(cmd *cobra.Command, flags []string) bool {
	var missingFlags []string
	var providedFlags []string
	for _, required := range flags {
		if cmd.Flag(required).Changed == false {
			missingFlags = append(missingFlags, required)
		} else {
			value := cmd.Flag(required).Value.String()
			providedFlags = append(providedFlags, fmt.Sprintf("--%s=%s", required, value))
		}
	}

	if len(missingFlags) > 0 {
		var msg string
		for _, f := range missingFlags {
			msg += fmt.Sprintf("--%s ", f)
		}

		color.Red("missing: %s\n", msg)
		if len(providedFlags) > 0 {
			provided := strings.Join(providedFlags, " ")
			color.Green("provide: %s\n", provided)
		}

		cmd.Println("")

		cmd.Usage()

		return true
	}

	return false
}
