package v1

// Match is a nearest-neighbor hit mapped to its corpus record.
type Match struct {
	Row    int               `json:"row"`
	Score  float32           `json:"score"`
	Record map[string]string `json:"record"`
}

// Report summarizes one completed evaluation run.
type Report struct {
	RunID     string `json:"run_id"`
	Evaluated int    `json:"evaluated"`
}
