package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/viktorvidual/invoices/internal/services"
	"github.com/viktorvidual/invoices/validation"
)

type ErrorResponse struct {
	Message string                `json:"message"`
	Errors  validation.Violations `json:"errors,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	body := []byte("null")
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			// avoid writing partial JSON
			http.Error(w, `{"message":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func JSONError(w http.ResponseWriter, status int, msg string, errs validation.Violations) {
	JSON(w, status, ErrorResponse{Message: msg, Errors: errs})
}

// Respond writes a mutation result. A redirect navigates the client with
// 303 See Other so the browser follows with a GET.
func Respond(w http.ResponseWriter, r *http.Request, res services.Result) {
	switch res.Kind {
	case services.ResultRedirect:
		http.Redirect(w, r, res.Target, http.StatusSeeOther)
	case services.ResultSuccess:
		w.WriteHeader(http.StatusNoContent)
	default:
		status := http.StatusInternalServerError
		if res.HasFieldErrors() {
			status = http.StatusUnprocessableEntity
		}
		JSONError(w, status, res.Message, res.FieldErrors)
	}
}
