package job

import (
	"encoding/json"
	"time"
)

// Job is a dead-lettered ingest task. The payload is the original queue
// message, kept verbatim so a retry republishes exactly what failed.
type Job struct {
	ID         string          `json:"id"`
	DocumentID string          `json:"document_id"`
	Handler    string          `json:"handler"`
	Payload    json.RawMessage `json:"payload"`
	Error      string          `json:"error"`
	Retries    int             `json:"retries"`
	CreatedAt  time.Time       `json:"created_at"`
}
