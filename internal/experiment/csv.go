package experiment

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV renders the collected series of a sweep as one flat CSV
// table, one row per sample, keyed by run token. The fixed columns
// run, index, and attempts come first, followed by the requested
// payload columns; a sample missing a payload key gets an empty cell.
//
// Column order is caller-chosen rather than derived from the payloads
// so the table is stable across probes that emit different key sets.
func WriteCSV(w io.Writer, columns []string, runs []RunResult) error {
	cw := csv.NewWriter(w)

	header := append([]string{"run", "index", "attempts"}, columns...)
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for _, run := range runs {
		for _, sample := range run.Samples {
			row[0] = run.Token
			row[1] = strconv.Itoa(sample.Index)
			row[2] = strconv.FormatInt(sample.Attempts, 10)
			for i, col := range columns {
				v, ok := sample.Payload[col]
				if !ok {
					row[3+i] = ""
					continue
				}
				row[3+i] = formatCell(v)
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
