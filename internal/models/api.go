package models

// APIResponse is the envelope for every externally exposed operation.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

func SuccessResponse(data interface{}, message string) APIResponse {
	return APIResponse{Success: true, Data: data, Message: message}
}

func ErrorResponse(message string) APIResponse {
	return APIResponse{Success: false, Data: nil, Message: message}
}

type CreateJobRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type UpdateJobRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type JobListResponse struct {
	Jobs     []Job `json:"jobs"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

type ResumeListResponse struct {
	Resumes []Resume `json:"resumes"`
	Total   int      `json:"total"`
}

// UploadResult reports one file of a (possibly multi-file) upload. A failed
// file carries Error and a nil Resume; other files are unaffected.
type UploadResult struct {
	FileName string  `json:"file_name"`
	Resume   *Resume `json:"resume,omitempty"`
	Error    string  `json:"error,omitempty"`
}

type EvaluationListResponse struct {
	Evaluations []Evaluation `json:"evaluations"`
	Total       int64        `json:"total"`
	JobID       string       `json:"job_id"`
	JobTitle    string       `json:"job_title"`
}

type IntegrityReport struct {
	OrphanResumes     int64 `json:"orphan_resumes"`
	OrphanEvaluations int64 `json:"orphan_evaluations"`
	Healthy           bool  `json:"healthy"`
}
