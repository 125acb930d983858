package models

// SchemaColumn is one column of the live schema.
type SchemaColumn struct {
	TableName  string `json:"table_name" db:"table_name"`
	ColumnName string `json:"column_name" db:"column_name"`
	DataType   string `json:"-" db:"data_type"`
}

// Movie is the parsed form of one data line.
type Movie struct {
	Title     string   `json:"titolo"`
	Director  string   `json:"nome"`
	Age       int      `json:"eta"`
	Year      int      `json:"anno"`
	Genre     string   `json:"genere"`
	Platforms []string `json:"piattaforme"`
}

type DatabaseInfo struct {
	Name string `json:"name" db:"name"`
}
