package models

import "time"

// Backup job statuses as reported by the agent.
const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
	JobStatusSkipped   = "skipped"
)

// StorageSummary is the used/total storage pair shown in dashboard cards.
type StorageSummary struct {
	UsedBytes  float64 `json:"usedBytes"`
	TotalBytes float64 `json:"totalBytes"`
}

// ProviderSummary is the per-provider breakdown on the backup dashboard.
type ProviderSummary struct {
	Provider      string  `json:"provider"`
	UsedBytes     float64 `json:"usedBytes"`
	SnapshotCount int     `json:"snapshotCount"`
	ConfigCount   int     `json:"configCount"`
}

// DashboardTotals holds the headline counters of the backup dashboard.
type DashboardTotals struct {
	Configs        int     `json:"configs"`
	Policies       int     `json:"policies"`
	Devices        int     `json:"devices"`
	Snapshots      int     `json:"snapshots"`
	JobsLast24h    int     `json:"jobsLast24h"`
	FailedLast24h  int     `json:"failedLast24h"`
	RunningJobs    int     `json:"runningJobs"`
	ProtectedBytes float64 `json:"protectedBytes"`
}

// BackupDashboard is the payload of GET /backup/dashboard.
type BackupDashboard struct {
	LastUpdated time.Time         `json:"-"`
	Storage     StorageSummary    `json:"storage"`
	Totals      DashboardTotals   `json:"totals"`
	Providers   []ProviderSummary `json:"providers"`
	RecentJobs  []BackupJob       `json:"recentJobs"`
}

// BackupConfig is a storage destination definition (/backup/configs).
type BackupConfig struct {
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Details   map[string]string `json:"details,omitempty"`
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Provider  string            `json:"provider"`
	Enabled   bool              `json:"enabled"`
}

// BackupConfigInput is the body for creating or updating a config.
type BackupConfigInput struct {
	Details  map[string]string `json:"details,omitempty"`
	Enabled  *bool             `json:"enabled,omitempty"`
	Name     string            `json:"name,omitempty"`
	Provider string            `json:"provider,omitempty"`
}

// BackupPolicy schedules backups of a set of paths to a config (/backup/policies).
type BackupPolicy struct {
	Paths     []string `json:"paths"`
	Targets   []string `json:"targets,omitempty"`
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	ConfigID  string   `json:"configId"`
	Schedule  string   `json:"schedule"`
	Retention int      `json:"retention"`
	Enabled   bool     `json:"enabled"`
}

// BackupPolicyInput is the body for creating or updating a policy.
type BackupPolicyInput struct {
	Paths     []string `json:"paths,omitempty"`
	Targets   []string `json:"targets,omitempty"`
	Enabled   *bool    `json:"enabled,omitempty"`
	Retention *int     `json:"retention,omitempty"`
	Name      string   `json:"name,omitempty"`
	ConfigID  string   `json:"configId,omitempty"`
	Schedule  string   `json:"schedule,omitempty"`
}

// BackupJob tracks the state of one backup run (/backup/jobs).
type BackupJob struct {
	StartedAt     time.Time `json:"startedAt"`
	CompletedAt   time.Time `json:"completedAt"`
	ID            string    `json:"id"`
	PolicyID      string    `json:"policyId,omitempty"`
	PolicyName    string    `json:"policyName,omitempty"`
	DeviceName    string    `json:"deviceName,omitempty"`
	Provider      string    `json:"provider,omitempty"`
	SnapshotID    string    `json:"snapshotId,omitempty"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	FilesBackedUp int       `json:"filesBackedUp"`
	BytesBackedUp float64   `json:"bytesBackedUp"`
}

// Failed reports whether the job ended in failure.
func (j *BackupJob) Failed() bool {
	return j.Status == JobStatusFailed
}

// Duration returns how long the job ran; zero while running.
func (j *BackupJob) Duration() time.Duration {
	if j.StartedAt.IsZero() || j.CompletedAt.IsZero() {
		return 0
	}
	return j.CompletedAt.Sub(j.StartedAt)
}

// SnapshotFile captures metadata for a backed up file.
type SnapshotFile struct {
	ModTime    time.Time `json:"modTime"`
	SourcePath string    `json:"sourcePath"`
	BackupPath string    `json:"backupPath"`
	Size       float64   `json:"size"`
}

// Snapshot represents a point-in-time backup (/backup/snapshots).
type Snapshot struct {
	Timestamp  time.Time      `json:"timestamp"`
	ID         string         `json:"id"`
	JobID      string         `json:"jobId,omitempty"`
	DeviceName string         `json:"deviceName,omitempty"`
	Provider   string         `json:"provider,omitempty"`
	Files      []SnapshotFile `json:"files"`
	Size       float64        `json:"size"`
}

// RestoreRequest is the body of POST /backup/restore.
type RestoreRequest struct {
	SnapshotID string   `json:"snapshotId"`
	TargetPath string   `json:"targetPath,omitempty"`
	DeviceID   string   `json:"deviceId,omitempty"`
	Paths      []string `json:"paths,omitempty"`
}

// RestoreResult is the server acknowledgement of a restore request.
type RestoreResult struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	FileCount int    `json:"fileCount,omitempty"`
}
