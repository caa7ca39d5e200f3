package task

import (
	"errors"
	"net/http"

	"github.com/socialpay/socialpay-api/internal/pkg/errorhandler"
	"github.com/socialpay/socialpay-api/internal/pkg/storage"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadyProcessed   = errors.New("submission already processed")
	ErrAlreadySubmitted   = errors.New("task already submitted")
	ErrInvalidEvidence    = errors.New("evidence is not a readable image")
)

func init() {
	errorhandler.Register(
		errorhandler.Mapping{Err: ErrTaskNotFound, Status: http.StatusNotFound, Code: "TASK_NOT_FOUND"},
		errorhandler.Mapping{Err: ErrSubmissionNotFound, Status: http.StatusNotFound, Code: "SUBMISSION_NOT_FOUND"},
		errorhandler.Mapping{Err: ErrAlreadyProcessed, Status: http.StatusConflict, Code: "ALREADY_PROCESSED"},
		errorhandler.Mapping{Err: ErrAlreadySubmitted, Status: http.StatusConflict, Code: "ALREADY_SUBMITTED"},
		errorhandler.Mapping{Err: ErrInvalidEvidence, Status: http.StatusBadRequest, Code: "INVALID_EVIDENCE"},
		errorhandler.Mapping{Err: storage.ErrFileTooLarge, Status: http.StatusBadRequest, Code: "FILE_TOO_LARGE"},
		errorhandler.Mapping{Err: storage.ErrInvalidMimeType, Status: http.StatusBadRequest, Code: "INVALID_FILE_TYPE"},
		errorhandler.Mapping{Err: storage.ErrEmptyFile, Status: http.StatusBadRequest, Code: "EMPTY_FILE"},
	)
}
