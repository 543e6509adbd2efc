package domain

import "time"

// ArchiveRecord is an immutable cold-storage snapshot of a terminal task plus
// its archival timestamp. Records are grouped by the calendar day they were
// archived, which is the partition key for cold-storage files.
type ArchiveRecord struct {
	// Task is the full snapshot of the task at archival time.
	Task Task `json:"task"`

	// ArchivedAt is when the archiver moved the task out of the live pool.
	ArchivedAt time.Time `json:"archived_at"`
}

// ArchiveStats summarizes the cold storage: partition count, total records
// and the dates covered.
type ArchiveStats struct {
	// Files is the number of daily partitions on disk.
	Files int `json:"files"`

	// TotalTasks is the number of records across all partitions.
	TotalTasks int `json:"total_tasks"`

	// Dates lists the partition dates in ascending order (YYYY-MM-DD).
	Dates []string `json:"dates"`
}
