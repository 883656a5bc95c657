package api

import (
	"github.com/resqdesk/resqdesk-api/console"
	"github.com/resqdesk/resqdesk-api/store"
)

var (
	errorMessageMap = map[int64]string{
		999: "internal server error",

		1010: "invalid parameters",
		1011: "cannot parse request",

		1100: console.ErrUnitNotFound.Error(),
		1101: console.ErrUnitBusy.Error(),
		1102: console.ErrUnitDispatched.Error(),

		1200: console.ErrNoIncident.Error(),
		1201: "no dispatch sequence is running",

		1300: console.ErrSpeechUnsupported.Error(),

		1400: store.ErrArchiveUnavailable.Error(),
	}

	errorInternalServer = errorJSON(999)

	errorInvalidParameters  = errorJSON(1010)
	errorCannotParseRequest = errorJSON(1011)

	errorUnitNotFound   = errorJSON(1100)
	errorUnitBusy       = errorJSON(1101)
	errorUnitDispatched = errorJSON(1102)

	errorNoIncident       = errorJSON(1200)
	errorNoDispatchActive = errorJSON(1201)

	errorSpeechUnsupported = errorJSON(1300)

	errorArchiveUnavailable = errorJSON(1400)
)

type ErrorResponse struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

// errorJSON converts an error code to a standardized error object
func errorJSON(code int64) ErrorResponse {
	var message string
	if msg, ok := errorMessageMap[code]; ok {
		message = msg
	} else {
		message = "unknown"
	}

	return ErrorResponse{
		Code:    code,
		Message: message,
	}
}
