package cmd

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/emrgen/graphbase"
)

var linkCmd = &cobra.Command{
	Use:     "link",
	Short:   "manage links between records",
	Example: `  graphbase link sync -t organisation_people_links -s organisation_id -c person_id -i 1 -g 1,2`,
}

func init() {
	rootCmd.AddCommand(linkCmd)
	linkCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	linkCmd.AddCommand(syncLinksCmd())
}

func syncLinksCmd() *cobra.Command {
	var table string
	var sourceCol string
	var targetCol string
	var sourceID int64
	var targetIDs string
	var linkType string

	var required = []string{"table", "source-col", "target-col", "source-id"}

	command := &cobra.Command{
		Use:   "sync",
		Short: "sync the links of a source record to a target set",
		Long: `sync replaces the link set of one source record: missing targets are
linked, absent targets are unlinked and matching targets are kept. An empty
target list removes every link of the source.`,
		Example: "graphbase link sync -t organisation_people_links -s organisation_id -c person_id -i 1 -g 1,2",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			targets, err := parseIDList(targetIDs)
			if err != nil {
				logrus.Error("invalid target ids, expected a comma separated list of record ids")
				return
			}

			client, err := newClient()
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			res, err := client.SyncLinks(context.Background(), table, &graphbase.SyncRequest{
				SourceCol: sourceCol,
				TargetCol: targetCol,
				SourceID:  sourceID,
				TargetIDs: targets,
				LinkType:  linkType,
			})
			if err != nil {
				logrus.Error(err)
				return
			}

			writer := tablewriter.NewWriter(os.Stdout)
			writer.Header("Added", "Removed", "Kept")
			writer.Append(formatIDList(res.Added), formatIDList(res.Removed), strconv.Itoa(res.Kept))
			if err := writer.Render(); err != nil {
				logrus.Error(err)
			}
		},
	}

	command.Flags().StringVarP(&table, "table", "t", "", "link table name (required)")
	command.Flags().StringVarP(&sourceCol, "source-col", "s", "", "source column of the link table (required)")
	command.Flags().StringVarP(&targetCol, "target-col", "c", "", "target column of the link table (required)")
	command.Flags().Int64VarP(&sourceID, "source-id", "i", 0, "source record id (required)")
	command.Flags().StringVarP(&targetIDs, "target-ids", "g", "", "comma separated target record ids")
	command.Flags().StringVarP(&linkType, "type", "y", "", "link type for newly created links")

	command.Flags().SortFlags = false

	return command
}

func parseIDList(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func formatIDList(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}

	return strings.Join(parts, ", ")
}
