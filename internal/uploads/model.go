package uploads

import "time"

// Status is the analysis state of an upload.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Valid reports whether s is one of the four known states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Upload is a file record owned by one user.
type Upload struct {
	ID              string     `db:"id" bson:"id" json:"id"`
	UserID          string     `db:"user_id" bson:"user_id" json:"user_id"`
	Filename        string     `db:"filename" bson:"filename" json:"filename"`
	FileSize        int64      `db:"file_size" bson:"file_size" json:"file_size"`
	StoragePath     *string    `db:"storage_path" bson:"storage_path" json:"storage_path"`
	ContentType     *string    `db:"content_type" bson:"content_type" json:"content_type"`
	ExtractedText   *string    `db:"extracted_text" bson:"extracted_text" json:"-"`
	UploadTimestamp time.Time  `db:"upload_timestamp" bson:"upload_timestamp" json:"upload_timestamp"`
	AnalysisStatus  Status     `db:"analysis_status" bson:"analysis_status" json:"analysis_status"`
	AnalysisResult  *string    `db:"analysis_result" bson:"analysis_result" json:"analysis_result"`
	AnalyzedAt      *time.Time `db:"analyzed_at" bson:"analyzed_at" json:"analyzed_at"`
}

// StatusUpdate changes the analysis fields of a record. Nil fields keep
// their stored value.
type StatusUpdate struct {
	Status     Status
	Result     *string
	AnalyzedAt *time.Time
}

// CreateInput registers an externally stored file.
type CreateInput struct {
	Filename    string
	FileSize    int64
	StoragePath string
	ContentType string
}

// FileInput is an uploaded file held in memory.
type FileInput struct {
	Filename    string
	ContentType string
	Data        []byte
}
