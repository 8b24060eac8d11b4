package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/emrgen/graphbase"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "materialized graph commands",
	Example: `  graphbase graph export
  graphbase graph export -n people,organisations -s people-1 -r 2`,
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	graphCmd.AddCommand(exportGraphCmd())
}

func exportGraphCmd() *cobra.Command {
	var includeDeleted bool
	var types string
	var seeds string
	var radius int
	var traversable string
	var output string

	command := &cobra.Command{
		Use:     "export",
		Short:   "export the materialized graph as json",
		Example: "graphbase graph export -n people -s people-1 -r 2 -o graph.json",
		Run: func(cmd *cobra.Command, args []string) {
			client, err := newClient()
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			res, err := client.BuildGraph(context.Background(), graphbase.GraphQuery{
				IncludeDeleted: includeDeleted,
				Types:          splitList(types),
				Seeds:          splitList(seeds),
				Radius:         radius,
				Traversable:    splitList(traversable),
			})
			if err != nil {
				logrus.Error(err)
				return
			}

			data, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				logrus.Error(err)
				return
			}

			if output != "" {
				err = os.WriteFile(output, data, 0644)
				if err != nil {
					logrus.Error(err)
					return
				}
				logrus.Infof("graph with %d nodes and %d edges written to %s", len(res.Nodes), len(res.Edges), output)
				return
			}

			fmt.Println(string(data))
		},
	}

	command.Flags().BoolVarP(&includeDeleted, "deleted", "x", false, "include soft deleted records")
	command.Flags().StringVarP(&types, "types", "n", "", "comma separated node tables to include")
	command.Flags().StringVarP(&seeds, "seeds", "s", "", "comma separated seed node ids, eg. people-1")
	command.Flags().IntVarP(&radius, "radius", "r", -1, "hops from the seeds, negative means unbounded")
	command.Flags().StringVarP(&traversable, "traversable", "a", "", "tables usable as hops but hidden from the result")
	command.Flags().StringVarP(&output, "output", "o", "", "write the graph to a file instead of stdout")

	command.Flags().SortFlags = false

	return command
}

func splitList(s string) []string {
	var parts []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			parts = append(parts, part)
		}
	}

	return parts
}
