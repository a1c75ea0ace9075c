package dto

// SweepResult reports an orphan upload sweep.
type SweepResult struct {
	Scanned int      `json:"scanned"`
	Orphans []string `json:"orphans"`
	Deleted int      `json:"deleted"`
	DryRun  bool     `json:"dryRun"`
}
