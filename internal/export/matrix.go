package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/kailas-cloud/concord/internal/domain/matrix"
)

// Matrix writes a dense comparison matrix as comma-separated CSV:
// a header "ID,<ids...>" then one row per id.
func Matrix(w io.Writer, m matrix.Dense) error {
	cw := csv.NewWriter(w)
	ids, n := m.IDs(), m.Size()

	header := make([]string, 0, n+1)
	header = append(header, "ID")
	for _, id := range ids {
		header = append(header, string(id))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write matrix header: %w", err)
	}

	for i, id := range ids {
		row := make([]string, 0, n+1)
		row = append(row, string(id))
		for j := range n {
			row = append(row, strconv.Itoa(int(m.At(i, j))))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write matrix row %s: %w", id, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush matrix csv: %w", err)
	}
	return nil
}
