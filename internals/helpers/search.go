package helper

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns user text into an ILIKE "contains" pattern. Wildcards
// in the input match literally (Postgres' default LIKE escape is backslash).
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
