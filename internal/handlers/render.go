package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/avc/loyalty-rewards/internal/domain"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// В ошибках используем имена полей из json тегов
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ErrorResponse - тело ответа с ошибкой
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// decodeAndValidate разбирает JSON тело запроса и проверяет теги validate.
// При ошибке ответ 400 уже записан.
func decodeAndValidate[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var value T

	if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid data type for field %q", typeErr.Field))
		} else {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
		}
		return value, false
	}

	if err := validate.Struct(value); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			writeError(w, http.StatusBadRequest, "request validation failed")
			return value, false
		}

		response := ErrorResponse{
			Error:  "request validation failed",
			Fields: make(map[string]string, len(errs)),
		}
		for _, fe := range errs {
			response.Fields[fe.Field()] = fieldMessage(fe)
		}
		writeJSON(w, http.StatusBadRequest, response)
		return value, false
	}

	return value, true
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return "invalid value"
	}
}

// writeServiceError переводит доменную ошибку в код ответа.
// Неизвестные ошибки логируются и возвращаются как 500.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error, msg string, fields ...zap.Field) {
	var validationErr *domain.ValidationError
	var redemptionErr *domain.RedemptionError

	switch {
	case errors.As(err, &validationErr):
		status := http.StatusBadRequest
		if errors.Is(err, domain.ErrInsufficientBalance) {
			status = http.StatusPaymentRequired
		}
		writeError(w, status, validationErr.Reason.Error())
	case errors.As(err, &redemptionErr):
		writeError(w, redemptionStatus(redemptionErr), redemptionErr.Reason.Error())
	case errors.Is(err, domain.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrAccountExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		logger.Error(msg, append(fields, zap.Error(err))...)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func redemptionStatus(err *domain.RedemptionError) int {
	switch {
	case errors.Is(err, domain.ErrRewardNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRewardUnavailable), errors.Is(err, domain.ErrRewardOutOfStock):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientPoints):
		return http.StatusPaymentRequired
	default:
		return http.StatusBadRequest
	}
}
