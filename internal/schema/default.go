package schema

// Default returns the built-in demo descriptor: people, organisations,
// initiatives, activities and contracts as node tables, the link tables
// between them, and a self-referential initiative hierarchy. Used by the
// tester, the seed command, and as the fallback when SCHEMA_PATH is not
// set.
func Default() *Schema {
	s := &Schema{
		Tables: []*Table{
			{
				Name: "people",
				Columns: []Column{
					{Name: "name", Type: ColumnText},
					{Name: "role", Type: ColumnText, Nullable: true},
					{Name: "email", Type: ColumnEmail, Nullable: true},
					{Name: "active", Type: ColumnBoolean, Nullable: true},
					{Name: "tags", Type: ColumnJSON, Nullable: true},
				},
			},
			{
				Name: "organisations",
				Columns: []Column{
					{Name: "name", Type: ColumnText},
					{Name: "description", Type: ColumnText, Nullable: true},
					{Name: "location", Type: ColumnText, Nullable: true},
					{Name: "contact_person", Type: ColumnInteger, Nullable: true},
					{Name: "tags", Type: ColumnJSON, Nullable: true},
				},
			},
			{
				Name: "initiatives",
				Columns: []Column{
					{Name: "name", Type: ColumnText},
					{Name: "description", Type: ColumnText, Nullable: true},
					{Name: "responsible_person", Type: ColumnInteger, Nullable: true},
					{Name: "tags", Type: ColumnJSON, Nullable: true},
				},
			},
			{
				Name: "activities",
				Columns: []Column{
					{Name: "name", Type: ColumnText},
					{Name: "description", Type: ColumnText, Nullable: true},
					{Name: "location", Type: ColumnText, Nullable: true},
					{Name: "start_date", Type: ColumnDatetime, Nullable: true},
					{Name: "end_date", Type: ColumnDatetime, Nullable: true},
					{Name: "tags", Type: ColumnJSON, Nullable: true},
				},
			},
			{
				Name: "contracts",
				Columns: []Column{
					{Name: "name", Type: ColumnText},
					{Name: "description", Type: ColumnText, Nullable: true},
					{Name: "organisation", Type: ColumnInteger, Nullable: true},
					{Name: "organisation_person", Type: ColumnInteger, Nullable: true},
					{Name: "responsible_person", Type: ColumnInteger, Nullable: true},
					{Name: "start_date", Type: ColumnDatetime, Nullable: true},
					{Name: "end_date", Type: ColumnDatetime, Nullable: true},
					{Name: "tags", Type: ColumnJSON, Nullable: true},
				},
			},
			linkTable("organisation_people_links", "organisation_id", "person_id", nil),
			linkTable("activity_people_links", "activity_id", "person_id", nil),
			linkTable("activity_initiative_links", "activity_id", "initiative_id", nil),
			linkTable("initiative_initiative_links", "parent_id", "child_id", &SelfRef{Source: "parent_id", Target: "child_id"}),
			linkTable("activity_contract_links", "activity_id", "contract_id", nil),
			linkTable("contract_initiative_links", "contract_id", "initiative_id", nil),
		},
		NodeTables: []string{"people", "organisations", "initiatives", "activities", "contracts"},
		ForeignKeys: []ForeignKey{
			{Table: "organisations", Column: "contact_person", ParentTable: "people", ParentColumn: ColID},
			{Table: "initiatives", Column: "responsible_person", ParentTable: "people", ParentColumn: ColID},
			{Table: "contracts", Column: "organisation", ParentTable: "organisations", ParentColumn: ColID},
			{Table: "contracts", Column: "organisation_person", ParentTable: "people", ParentColumn: ColID},
			{Table: "contracts", Column: "responsible_person", ParentTable: "people", ParentColumn: ColID},
			{Table: "organisation_people_links", Column: "organisation_id", ParentTable: "organisations", ParentColumn: ColID},
			{Table: "organisation_people_links", Column: "person_id", ParentTable: "people", ParentColumn: ColID},
			{Table: "activity_people_links", Column: "activity_id", ParentTable: "activities", ParentColumn: ColID},
			{Table: "activity_people_links", Column: "person_id", ParentTable: "people", ParentColumn: ColID},
			{Table: "activity_initiative_links", Column: "activity_id", ParentTable: "activities", ParentColumn: ColID},
			{Table: "activity_initiative_links", Column: "initiative_id", ParentTable: "initiatives", ParentColumn: ColID},
			{Table: "initiative_initiative_links", Column: "parent_id", ParentTable: "initiatives", ParentColumn: ColID},
			{Table: "initiative_initiative_links", Column: "child_id", ParentTable: "initiatives", ParentColumn: ColID},
			{Table: "activity_contract_links", Column: "activity_id", ParentTable: "activities", ParentColumn: ColID},
			{Table: "activity_contract_links", Column: "contract_id", ParentTable: "contracts", ParentColumn: ColID},
			{Table: "contract_initiative_links", Column: "contract_id", ParentTable: "contracts", ParentColumn: ColID},
			{Table: "contract_initiative_links", Column: "initiative_id", ParentTable: "initiatives", ParentColumn: ColID},
		},
	}

	if err := s.init(); err != nil {
		// the default descriptor is covered by tests, this cannot happen
		panic(err)
	}

	return s
}

func linkTable(name, left, right string, roles *SelfRef) *Table {
	return &Table{
		Name: name,
		Columns: []Column{
			{Name: left, Type: ColumnInteger},
			{Name: right, Type: ColumnInteger},
			{Name: "type", Type: ColumnText, Nullable: true},
		},
		SelfRef: roles,
	}
}
