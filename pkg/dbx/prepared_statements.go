package dbx

// PreparedStatement represents a prepared statement query.
//
// A PreparedStatement encapsulates a SQL query that is prepared on every new connection of a
// pool and executed by name afterwards, saving the parse and plan round trip.
//
// Fields:
//   - Name: A unique name identifying the prepared statement. This name is used to reference the statement when executing it.
//   - Query: The SQL query string associated with the prepared statement. The query can include placeholders for arguments.
type PreparedStatement struct {
	Name  string `mapstructure:"name" validate:"required"`
	Query string `mapstructure:"query" validate:"required"`
}

// PreparedStatementsMap associates prepared statements with logical database names.
// Services embed it with `mapstructure:",squash"` to read a `statements` section:
/*
statements:
  audit:
    - name: "insert_audit"
      query: "INSERT INTO audit_log (entity, action) VALUES ($1, $2)"
*/
type PreparedStatementsMap struct {
	DbPrepStmMap map[string][]PreparedStatement `mapstructure:"statements" validate:"omitempty,dive,dive"`
}

// NewPreparedStatement creates a new prepared statement.
func NewPreparedStatement(name, query string) PreparedStatement {
	return PreparedStatement{Name: name, Query: query}
}

// For returns the statements registered for database, nil when none.
func (m PreparedStatementsMap) For(database string) []PreparedStatement {
	if m.DbPrepStmMap == nil {
		return nil
	}

	return m.DbPrepStmMap[database]
}

// GetName returns the name of the prepared statement.
func (p PreparedStatement) GetName() string {
	return p.Name
}

// GetQuery returns the SQL query string of the prepared statement.
func (p PreparedStatement) GetQuery() string {
	return p.Query
}
