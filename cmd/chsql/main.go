// Command chsql renders and runs SELECT statements described in YAML.
//
// Commands:
//   - render: print the SQL of one or more query definitions
//   - run: execute a query definition and print the rows as YAML
//   - functions: list the SQL functions with a declared signature
//   - version: print build information
//
// Connection settings come from chsql.yaml (discovered by walking up from
// the working directory, or given with --config) and CHSQL_* environment
// variables:
//
//	database:
//	  driver: clickhouse
//	  dsn: clickhouse://default:@localhost:9000/default
//	log:
//	  level: debug
package main

func main() {
	Execute()
}
