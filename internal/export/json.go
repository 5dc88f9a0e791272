package export

import (
	"encoding/json"
	"io"

	"github.com/tupadhub/tupadhub/internal/domain/project"
)

// JSON writes the full project array, pretty-printed with two-space indent.
func JSON(w io.Writer, projects []project.Project) error {
	if projects == nil {
		projects = []project.Project{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(projects)
}
