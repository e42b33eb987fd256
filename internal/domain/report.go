package domain

import "time"

// RunReport summarizes one refresh run.
type RunReport struct {
	RunID      string    `json:"runId"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`

	Updated   int `json:"updated"`
	Preserved int `json:"preserved"`
	Missing   int `json:"missing"`

	GlobalEvents int `json:"globalEvents"`
	SeismicData  int `json:"seismicData"`

	ArtifactBytes int `json:"artifactBytes"`

	// Warnings lists degraded sources, e.g. a failed indicator.
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// OK reports whether the run produced an artifact.
func (r RunReport) OK() bool { return r.Error == "" }
