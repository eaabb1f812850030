package reviews

import (
	"errors"
	"fmt"
	"net/http"

	"contract-validator/internal/contracts"
	"contract-validator/internal/docx"
)

// Failure is the HTTP-facing description of a pipeline error.
type Failure struct {
	Status  int
	Code    string
	Message string
	Details any
}

// Classify maps a pipeline error onto a status, error code and message.
// maxFileSize only shapes the FILE_TOO_LARGE message.
func Classify(err error, maxFileSize int64) Failure {
	switch {
	case errors.Is(err, docx.ErrUnsupportedFileType):
		return Failure{Status: http.StatusBadRequest, Code: contracts.CodeInvalidFileType, Message: "Invalid file type. Only DOCX files are supported"}
	case errors.Is(err, docx.ErrFileTooLarge):
		msg := "File too large"
		if maxFileSize > 0 {
			msg = fmt.Sprintf("File too large. Maximum size is %d bytes", maxFileSize)
		}
		return Failure{Status: http.StatusBadRequest, Code: contracts.CodeFileTooLarge, Message: msg}
	case errors.Is(err, contracts.ErrNotAContract):
		return Failure{Status: http.StatusBadRequest, Code: contracts.CodeInvalidContract, Message: "The uploaded document does not appear to be a valid contract"}
	case errors.Is(err, docx.ErrInvalidDocument):
		return Failure{Status: http.StatusBadRequest, Code: contracts.CodeDocument, Message: "The document could not be read"}
	}

	var stageErr *StageError
	if errors.As(err, &stageErr) {
		switch stageErr.Stage {
		case StageLegalContext, StageAnalysis, StageValidate:
			return Failure{
				Status:  http.StatusBadGateway,
				Code:    contracts.CodeProcessing,
				Message: "Contract analysis failed",
				Details: map[string]any{"stage": stageErr.Stage, "cause": stageErr.Err.Error()},
			}
		}
	}
	return Failure{Status: http.StatusInternalServerError, Code: contracts.CodeProcessing, Message: "An unexpected error occurred"}
}
