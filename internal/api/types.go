package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Job describes a mashup job in a transport-friendly format.
type Job struct {
	ID          string `json:"id"`
	SearchTerm  string `json:"search_term"`
	Count       int    `json:"count"`
	ClipSeconds int    `json:"clip_seconds"`
	Email       string `json:"email,omitempty"`
	State       string `json:"state"`
	Percent     int    `json:"percent"`
	Message     string `json:"message"`
	Done        bool   `json:"done"`
	Error       string `json:"error"`
	ErrorKind   string `json:"error_kind,omitempty"`
	Emailed     bool   `json:"emailed"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
	FinishedAt  string `json:"finished_at,omitempty"`
}

// Public drops the recipient address for unauthenticated readers.
func (j Job) Public() Job {
	j.Email = ""
	return j
}

// SubmitRequest is the JSON body accepted by POST /api/mashups. The legacy
// form names singer, num_videos, and duration are accepted as aliases.
type SubmitRequest struct {
	SearchTerm  string `json:"search_term,omitempty"`
	Singer      string `json:"singer,omitempty"`
	Count       int    `json:"count,omitempty"`
	NumVideos   int    `json:"num_videos,omitempty"`
	ClipSeconds int    `json:"clip_seconds,omitempty"`
	Duration    int    `json:"duration,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Normalized folds legacy aliases into the canonical fields.
func (r SubmitRequest) Normalized() SubmitRequest {
	if r.SearchTerm == "" {
		r.SearchTerm = r.Singer
	}
	if r.Count == 0 {
		r.Count = r.NumVideos
	}
	if r.ClipSeconds == 0 {
		r.ClipSeconds = r.Duration
	}
	r.Singer, r.NumVideos, r.Duration = "", 0, 0
	return r
}

// SubmitResponse acknowledges an accepted job.
type SubmitResponse struct {
	JobID     string `json:"job_id"`
	StatusURL string `json:"status_url"`
}

// JobListResponse wraps a collection of jobs.
type JobListResponse struct {
	Jobs []Job `json:"jobs"`
}

// JobResponse wraps a single job.
type JobResponse struct {
	Job Job `json:"job"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Version     string `json:"version,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running         bool               `json:"running"`
	PID             int                `json:"pid"`
	JobsDBPath      string             `json:"jobs_db_path"`
	LockFilePath    string             `json:"lock_file_path"`
	LogPath         string             `json:"log_path,omitempty"`
	ActiveJobs      int                `json:"active_jobs"`
	JobCounts       map[string]int     `json:"job_counts"`
	Workspaces      int                `json:"workspaces"`
	DeliveryEnabled bool               `json:"delivery_enabled"`
	Dependencies    []DependencyStatus `json:"dependencies"`
}

// ErrorResponse is the body of every non-2xx API reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
