package inventory

import "sort"

// ChangeReport is the set difference between two inventories. A URL present
// in both counts only as retained; record metadata is not compared further.
type ChangeReport struct {
	PreviousID   string   `json:"previous_id,omitempty"`
	CurrentID    string   `json:"current_id"`
	NewURLs      []string `json:"new_urls"`
	RemovedURLs  []string `json:"removed_urls"`
	RetainedURLs []string `json:"retained_urls"`
	CountDelta   int      `json:"count_delta"`
}

// Diff compares current against previous. It is a pure function of the two
// snapshots; the URL slices in the report are sorted for stable output.
func Diff(previous, current Inventory) ChangeReport {
	report := ChangeReport{
		PreviousID: previous.ID,
		CurrentID:  current.ID,
		CountDelta: len(current.URLs) - len(previous.URLs),
	}

	for url := range current.URLs {
		if _, ok := previous.URLs[url]; ok {
			report.RetainedURLs = append(report.RetainedURLs, url)
		} else {
			report.NewURLs = append(report.NewURLs, url)
		}
	}
	for url := range previous.URLs {
		if _, ok := current.URLs[url]; !ok {
			report.RemovedURLs = append(report.RemovedURLs, url)
		}
	}

	sort.Strings(report.NewURLs)
	sort.Strings(report.RemovedURLs)
	sort.Strings(report.RetainedURLs)
	return report
}
