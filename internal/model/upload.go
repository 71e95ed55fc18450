package model

// UploadPhase enumerates the formal states of the upload pipeline.
type UploadPhase string

const (
	UploadIdle             UploadPhase = "IDLE"
	UploadUploading        UploadPhase = "UPLOADING"
	UploadServerProcessing UploadPhase = "SERVER_PROCESSING"
	UploadReady            UploadPhase = "READY"
	UploadFailed           UploadPhase = "FAILED"
)

// UploadState is the observable state of the upload pipeline. Percent is
// meaningful during UPLOADING and is monotonically non-decreasing; Reason
// carries the failure message during FAILED.
type UploadState struct {
	Phase   UploadPhase `json:"phase"`
	Percent int         `json:"percent"`
	Reason  string      `json:"reason,omitempty"`
}

// ModeFileExtensions maps each mode to the upload extensions it accepts,
// mirroring the file pickers of the workspace UI.
var ModeFileExtensions = map[Mode][]string{
	ModeVideo:    {".mp4", ".mov", ".avi", ".webm"},
	ModeProblem:  {".jpg", ".jpeg", ".png", ".gif", ".webp"},
	ModeDocument: {".pdf", ".txt", ".doc", ".docx"},
	ModeCreative: {".jpg", ".jpeg", ".png", ".gif", ".webp"},
}

// AcceptsExtension reports whether the given lowercase file extension
// (including the dot) is uploadable in mode m.
func AcceptsExtension(m Mode, ext string) bool {
	for _, allowed := range ModeFileExtensions[m] {
		if allowed == ext {
			return true
		}
	}
	return false
}
