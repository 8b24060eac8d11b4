package cmd

import (
	"context"

	"github.com/emrgen/graphbase/internal/config"
	"github.com/emrgen/graphbase/internal/module"
	"github.com/emrgen/graphbase/internal/queue"
	"github.com/emrgen/graphbase/internal/schema"
	"github.com/emrgen/graphbase/internal/service"
	"github.com/emrgen/graphbase/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "db commands",
}

func init() {
	dbCmd.AddCommand(Migrate())
	dbCmd.AddCommand(Seed())
}

func Migrate() *cobra.Command {
	command := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database",
		Run: func(cmd *cobra.Command, args []string) {
			_, _, err := openStore()
			if err != nil {
				panic(err)
			}
		},
	}

	return command
}

func Seed() *cobra.Command {
	command := &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with the demo dataset",
		Run: func(cmd *cobra.Command, args []string) {
			recordStore, sch, err := openStore()
			if err != nil {
				panic(err)
			}

			err = seed(recordStore, sch)
			if err != nil {
				logrus.Errorf("seeding database: %v", err)
				return
			}
		},
	}

	return command
}

// openStore resolves the configured database and schema and migrates the
// backing tables, the same way the server does on boot.
func openStore() (store.Store, *schema.Schema, error) {
	cnf := config.LoadConfig()
	db, err := config.GetDb(cnf)
	if err != nil {
		return nil, nil, err
	}

	sch := schema.Default()
	if cnf.SchemaPath != "" {
		sch, err = schema.Load(cnf.SchemaPath)
		if err != nil {
			return nil, nil, err
		}
	}

	gormStore := store.NewGormStore(db, sch)
	if err := gormStore.Migrate(); err != nil {
		return nil, nil, err
	}

	return gormStore, sch, nil
}

func seed(st store.Store, sch *schema.Schema) error {
	ctx := module.WithActor(context.Background(), 1)

	existing, err := st.ListCurrentRecords(ctx, "people")
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logrus.Info("database already seeded, skipping")
		return nil
	}

	noop := queue.NewNoopQueue()
	records := service.NewRecordService(sch, st, noop)
	links := service.NewLinkService(sch, st, noop)

	nodes := []struct {
		table  string
		fields map[string]any
	}{
		{"people", map[string]any{"id": int64(1), "name": "Alice", "role": "Data Scientist", "email": "alice@example.com", "active": true, "tags": []string{"datascience"}}},
		{"people", map[string]any{"id": int64(2), "name": "Bob", "role": "Project Manager", "email": "bob@example.com", "active": true, "tags": []string{"pm"}}},
		{"organisations", map[string]any{"id": int64(1), "name": "Data Org", "description": "Org for data work", "location": "Remote", "contact_person": int64(1), "tags": []string{"research"}}},
		{"initiatives", map[string]any{"id": int64(1), "name": "Project Phoenix", "description": "Rebuild the data pipeline", "responsible_person": int64(2), "tags": []string{"infra"}}},
		{"activities", map[string]any{"id": int64(1), "name": "Q1 Research", "description": "Research for Phoenix", "location": "Remote", "start_date": "2025-01-15", "end_date": "2025-03-31", "tags": []string{"research"}}},
		{"contracts", map[string]any{"id": int64(1), "name": "Phoenix Contract", "description": "Contract for Phoenix work", "organisation": int64(1), "organisation_person": int64(1), "responsible_person": int64(2), "start_date": "2025-01-01", "end_date": "2025-12-31", "tags": []string{"contract"}}},
	}
	for _, node := range nodes {
		_, err := records.Submit(ctx, node.table, node.fields)
		if err != nil {
			return err
		}
	}

	linkRows := []*service.SyncRequest{
		{LinkTable: "organisation_people_links", SourceCol: "organisation_id", TargetCol: "person_id", SourceID: 1, TargetIDs: []int64{1}, LinkType: "member"},
		{LinkTable: "activity_people_links", SourceCol: "activity_id", TargetCol: "person_id", SourceID: 1, TargetIDs: []int64{1}, LinkType: "reporter"},
		{LinkTable: "activity_initiative_links", SourceCol: "activity_id", TargetCol: "initiative_id", SourceID: 1, TargetIDs: []int64{1}, LinkType: "part of"},
		{LinkTable: "initiative_initiative_links", SourceCol: "parent_id", TargetCol: "child_id", SourceID: 1, TargetIDs: []int64{1}, LinkType: "parent"},
		{LinkTable: "activity_contract_links", SourceCol: "activity_id", TargetCol: "contract_id", SourceID: 1, TargetIDs: []int64{1}, LinkType: "covered by"},
		{LinkTable: "contract_initiative_links", SourceCol: "contract_id", TargetCol: "initiative_id", SourceID: 1, TargetIDs: []int64{1}, LinkType: "related to"},
	}
	for _, req := range linkRows {
		_, err := links.Sync(ctx, req)
		if err != nil {
			return err
		}
	}

	logrus.Info("database seeded")

	return nil
}
