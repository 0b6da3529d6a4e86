package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeInvalidOptions         ErrorCode = "INVALID_OPTIONS"
	ErrCodeInvalidJobRequest      ErrorCode = "INVALID_JOB_REQUEST"
	ErrCodeCandidateScoringFailed ErrorCode = "CANDIDATE_SCORING_FAILED"
	ErrCodeMatchingTimeout        ErrorCode = "MATCHING_TIMEOUT"

	ErrCodeJobNotFound          ErrorCode = "JOB_NOT_FOUND"
	ErrCodeWorkerNotFound       ErrorCode = "WORKER_NOT_FOUND"
	ErrCodeCandidateFetchFailed ErrorCode = "CANDIDATE_FETCH_FAILED"

	ErrCodeReferenceTablesInvalid   ErrorCode = "REFERENCE_TABLES_INVALID"
	ErrCodePayloadValidationFailed  ErrorCode = "PAYLOAD_VALIDATION_FAILED"
	ErrCodeCandidateSearchFailed    ErrorCode = "CANDIDATE_SEARCH_FAILED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout                 ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeBrokerUnavailable ErrorCode = "BROKER_UNAVAILABLE"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata returns e after attaching key=value to its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ---------------------------------------------------------------------------
// Matching
// ---------------------------------------------------------------------------

func NewInvalidOptionsError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidOptions,
		Message:   "Invalid matching options",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidJobRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidJobRequest,
		Message:   "Job request is missing required fields",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewCandidateScoringFailedError(workerID string, cause interface{}) *StandardError {
	return &StandardError{
		Code:      ErrCodeCandidateScoringFailed,
		Message:   "Candidate could not be scored",
		Details:   fmt.Sprintf("workerId: %s, cause: %v", workerID, cause),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewMatchingTimeoutError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMatchingTimeout,
		Message:   "Matching deadline exceeded",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ---------------------------------------------------------------------------
// Providers
// ---------------------------------------------------------------------------

func NewJobNotFoundError(jobID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeJobNotFound,
		Message:   "Job request not found",
		Details:   fmt.Sprintf("jobId: %s", jobID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewWorkerNotFoundError(workerID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeWorkerNotFound,
		Message:   "Worker profile not found",
		Details:   fmt.Sprintf("workerId: %s", workerID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewCandidateFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCandidateFetchFailed,
		Message:   "Failed to load candidate profiles",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewCandidateSearchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCandidateSearchFailed,
		Message:   "Candidate search failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewReferenceTablesInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeReferenceTablesInvalid,
		Message:   "Reference tables are invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewPayloadValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePayloadValidationFailed,
		Message:   "Payload failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ---------------------------------------------------------------------------
// Storage
// ---------------------------------------------------------------------------

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewQueryTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeElasticsearchConnectionFailed,
		Message:   "Elasticsearch connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Elasticsearch query error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewSearchTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Elasticsearch query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewIndexNotFoundError(indexName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexNotFound,
		Message:   "Elasticsearch index not found",
		Details:   fmt.Sprintf("indexName: %s", indexName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewBrokerUnavailableError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBrokerUnavailable,
		Message:   "Zeebe broker unavailable",
		Details:   fmt.Sprintf("operation: %s, error: %v", operation, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ---------------------------------------------------------------------------
// Inspection
// ---------------------------------------------------------------------------

// AsStandardError unwraps err until it finds a *StandardError.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// Code returns the error code carried by err, or "" when err has none.
func Code(err error) ErrorCode {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Code
	}
	return ""
}

func IsCode(err error, code ErrorCode) bool {
	return err != nil && Code(err) == code
}

// ---------------------------------------------------------------------------
// BPMN mapping
// ---------------------------------------------------------------------------

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidOptions:                "INVALID_OPTIONS",
	ErrCodeInvalidJobRequest:             "INVALID_JOB_REQUEST",
	ErrCodeCandidateScoringFailed:        "CANDIDATE_SCORING_FAILED",
	ErrCodeMatchingTimeout:               "MATCHING_TIMEOUT",
	ErrCodeJobNotFound:                   "JOB_NOT_FOUND",
	ErrCodeWorkerNotFound:                "WORKER_NOT_FOUND",
	ErrCodeCandidateFetchFailed:          "CANDIDATE_FETCH_FAILED",
	ErrCodeCandidateSearchFailed:         "CANDIDATE_SEARCH_FAILED",
	ErrCodeReferenceTablesInvalid:        "REFERENCE_TABLES_INVALID",
	ErrCodePayloadValidationFailed:       "PAYLOAD_VALIDATION_FAILED",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:                  "QUERY_TIMEOUT",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeSearchQueryFailed:             "SEARCH_QUERY_FAILED",
	ErrCodeSearchTimeout:                 "SEARCH_TIMEOUT",
	ErrCodeIndexNotFound:                 "INDEX_NOT_FOUND",
	ErrCodeBrokerUnavailable:             "BROKER_UNAVAILABLE",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeCandidateFetchFailed,
		ErrCodeCandidateSearchFailed,
		ErrCodeBrokerUnavailable:
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeSearchTimeout,
		ErrCodeMatchingTimeout:
		return 2

	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "TIMEOUT"):
		return "TIMEOUT"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "NOT_FOUND"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "CANDIDATE"):
		return "MATCHING"
	default:
		return "OTHER"
	}
}
