package report

import (
	"encoding/json"
	"fmt"

	"github.com/siteatlas/siteatlas/internal/inventory"
)

// Changes renders a change report as indented JSON for archival and the API.
func Changes(rep inventory.ChangeReport) ([]byte, error) {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal change report: %w", err)
	}
	return append(data, '\n'), nil
}
