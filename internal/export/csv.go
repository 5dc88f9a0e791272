package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/tupadhub/tupadhub/internal/domain/project"
)

const utf8BOM = "\ufeff"

// CSV writes one project as a semicolon-delimited sheet: a UTF-8 byte-order
// mark, the header row and one data row, CRLF terminated.
func CSV(w io.Writer, p project.Project) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("writing bom: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'
	cw.UseCRLF = true

	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := cw.Write(Row(p)); err != nil {
		return fmt.Errorf("writing row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}
