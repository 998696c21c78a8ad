package google

import (
	"fmt"
	"strconv"
	"strings"

	"socialspend/internal/ingest"
)

// parseValues converts a values matrix (as returned by the Sheets API) into
// records. Numeric cells may arrive as float64 when the range is read
// unformatted; they are rendered without exponent.
func parseValues(values [][]interface{}) ingest.Result {
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = toStrings(v)
	}
	return ingest.FromRows(rows)
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch n := v.(type) {
		case float64:
			out[i] = strconv.FormatFloat(n, 'f', -1, 64)
		case nil:
			out[i] = ""
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return out
}
