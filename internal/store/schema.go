package store

import "fmt"

// Schema DDL for the four tables named in spec §6. Table and keyspace
// names are parameterized by %s (keyspace) so they can be applied with
// fmt.Sprintf, the same pattern metrictank's cassandra store uses for
// its keyspace/table creation statements.
const (
	createKeyspaceDDL = `CREATE KEYSPACE IF NOT EXISTS %s WITH replication = {'class': 'SimpleStrategy', 'replication_factor': 1}`

	createDataPointsDDL = `CREATE TABLE IF NOT EXISTS %s.data_points (
		key blob,
		column1 blob,
		value blob,
		PRIMARY KEY (key, column1)
	) WITH CLUSTERING ORDER BY (column1 DESC)`

	createRowTimeKeyIndexDDL = `CREATE TABLE IF NOT EXISTS %s.row_time_key_index (
		key blob,
		time_bucket bigint,
		column1 blob,
		PRIMARY KEY (key, time_bucket, column1)
	)`

	createRowTimeKeySplitIndexDDL = `CREATE TABLE IF NOT EXISTS %s.row_time_key_split_index (
		metric_name text,
		tag_name text,
		tag_value text,
		time_bucket bigint,
		column1 blob,
		PRIMARY KEY ((metric_name, tag_name, tag_value), time_bucket, column1)
	)`

	createStringIndexDDL = `CREATE TABLE IF NOT EXISTS %s.string_index (
		key blob,
		column1 text,
		value blob,
		PRIMARY KEY (key, column1)
	)`
)

// DDLStatements returns every CREATE statement needed to bootstrap
// keyspace, formatted against keyspace. Schema DDL bootstrap is out of
// scope for the engine itself (spec §1); the "schema" CLI subcommand
// prints these statements, and EnsureKeyspace applies them.
func DDLStatements(keyspace string) []string {
	return []string{
		fmt.Sprintf(createKeyspaceDDL, keyspace),
		fmt.Sprintf(createDataPointsDDL, keyspace),
		fmt.Sprintf(createRowTimeKeyIndexDDL, keyspace),
		fmt.Sprintf(createRowTimeKeySplitIndexDDL, keyspace),
		fmt.Sprintf(createStringIndexDDL, keyspace),
	}
}
