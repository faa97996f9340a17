package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Jirawatp058/random-buddy/internal/model"
	"github.com/Jirawatp058/random-buddy/internal/services/auth"
)

// APIError is the body of every non-2xx API response, wrapped in
// ErrorResponse.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

const (
	CodeInvalidRequest           = "INVALID_REQUEST"
	CodeUnauthorized             = "UNAUTHORIZED"
	CodeDuplicateName            = "DUPLICATE_NAME"
	CodeParticipantNotFound      = "PARTICIPANT_NOT_FOUND"
	CodeInvalidCredentials       = "INVALID_CREDENTIALS"
	CodeRegistrationClosed       = "REGISTRATION_CLOSED"
	CodeAlreadyMatched           = "ALREADY_MATCHED"
	CodeNotMatched               = "NOT_MATCHED"
	CodeInsufficientParticipants = "INSUFFICIENT_PARTICIPANTS"
	CodeInfeasible               = "INFEASIBLE"
	CodeConflict                 = "CONFLICT"
	CodeInternalError            = "INTERNAL_ERROR"
)

// statusError is an error that already knows its HTTP rendering.
type statusError struct {
	status int
	body   APIError
}

func (e *statusError) Error() string {
	return e.body.Message
}

func newStatusError(status int, code, message string) *statusError {
	return &statusError{status: status, body: APIError{Code: code, Message: message}}
}

// mapping is checked in order, so a specific sentinel must come before
// any sentinel it wraps. An empty message means "use err.Error()".
var mapping = []struct {
	target  error
	status  int
	code    string
	message string
}{
	{model.ErrInvalidParticipant, http.StatusBadRequest, CodeInvalidRequest, ""},
	{model.ErrInvalidMatchInput, http.StatusBadRequest, CodeInvalidRequest, "Invalid match input"},
	{model.ErrDuplicateName, http.StatusConflict, CodeDuplicateName, "That name is already registered"},
	{model.ErrParticipantNotFound, http.StatusNotFound, CodeParticipantNotFound, "Participant not found"},
	{model.ErrBadCredential, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid name or password"},
	{model.ErrRegistrationClosed, http.StatusConflict, CodeRegistrationClosed, "Registration is closed"},
	{model.ErrAlreadyMatched, http.StatusConflict, CodeAlreadyMatched, "Matching has already been run"},
	{model.ErrNotMatched, http.StatusConflict, CodeNotMatched, "Matching has not been run yet"},
	{model.ErrInsufficientParticipants, http.StatusConflict, CodeInsufficientParticipants, "At least two participants are needed"},
	{model.ErrInfeasible, http.StatusUnprocessableEntity, CodeInfeasible, "No valid assignment exists for the current exclusions"},
	{model.ErrConflict, http.StatusConflict, CodeConflict, "The exchange changed concurrently, please retry"},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid admin password"},
	{auth.ErrInvalidSession, http.StatusUnauthorized, CodeUnauthorized, "Invalid or expired session"},
}

func classify(err error) *statusError {
	var se *statusError
	if errors.As(err, &se) {
		return se
	}
	for _, m := range mapping {
		if errors.Is(err, m.target) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			return newStatusError(m.status, m.code, msg)
		}
	}
	return NewInternalError().(*statusError)
}

// WriteError renders err as a JSON error response. Errors it does not
// recognise become a bare 500 so internals never leak.
func WriteError(w http.ResponseWriter, err error) {
	se := classify(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(se.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: se.body})
}

func NewInvalidRequestError(message string) error {
	return newStatusError(http.StatusBadRequest, CodeInvalidRequest, message)
}

func NewUnauthorizedError() error {
	return newStatusError(http.StatusUnauthorized, CodeUnauthorized, "Authentication required")
}

func NewInternalError() error {
	return newStatusError(http.StatusInternalServerError, CodeInternalError, "Internal server error")
}
