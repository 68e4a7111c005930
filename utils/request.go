package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"blockpress/globals"
)

const maxBodyBytes = 1 << 20

var validate = validator.New()

// ErrInvalidBody marks request bodies that failed decoding or validation.
var ErrInvalidBody = errors.New("invalid request body")

// DecodeAndValidate reads a JSON body into dst and checks its validate tags.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidBody, describe(err))
	}
	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}

func GetUserIDFromRequest(r *http.Request) string {
	userID, _ := r.Context().Value(globals.UserIDKey).(string)
	return userID
}

func GetUsernameFromRequest(r *http.Request) string {
	username, _ := r.Context().Value(globals.UsernameKey).(string)
	return username
}
