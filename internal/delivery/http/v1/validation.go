package v1

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	minUsernameLength       = 3
	maxUsernameLength       = 64
	maxPasswordLength       = 255
	maxTitleLength          = 255
	maxDescriptionLength    = 4096
	maxPermissionTypeLength = 64

	defaultSkip  = 0
	defaultLimit = 10
	maxLimit     = 100
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// validationErrors collects every problem with a request instead of
// stopping at the first one.
type validationErrors []fieldError

func (v validationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Field + ": " + e.Message
	}
	return strings.Join(parts, "; ")
}

func (v *validationErrors) add(field, format string, args ...any) {
	*v = append(*v, fieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func validateUsername(errs *validationErrors, username string) {
	n := utf8.RuneCountInString(username)
	switch {
	case n < minUsernameLength || n > maxUsernameLength:
		errs.add("username", "must be between %d and %d characters", minUsernameLength, maxUsernameLength)
	case !usernamePattern.MatchString(username):
		errs.add("username", "may contain only letters, digits, '_', '.' and '-'")
	}
}

func validatePassword(errs *validationErrors, password string) {
	switch {
	case password == "":
		errs.add("password", "is required")
	case len(password) > maxPasswordLength:
		errs.add("password", "must be at most %d bytes", maxPasswordLength)
	}
}

func validateCredentials(username, password string) validationErrors {
	var errs validationErrors
	validateUsername(&errs, username)
	validatePassword(&errs, password)
	return errs
}

func validateTask(title *string, description *string) validationErrors {
	var errs validationErrors
	if title == nil || strings.TrimSpace(*title) == "" {
		errs.add("title", "is required")
	} else if utf8.RuneCountInString(*title) > maxTitleLength {
		errs.add("title", "must be at most %d characters", maxTitleLength)
	}
	if description != nil && utf8.RuneCountInString(*description) > maxDescriptionLength {
		errs.add("description", "must be at most %d characters", maxDescriptionLength)
	}
	return errs
}

func validatePermission(userID *int64, permissionType string) validationErrors {
	var errs validationErrors
	if userID == nil || *userID <= 0 {
		errs.add("user_id", "must be a positive integer")
	}
	validatePermissionType(&errs, permissionType, true)
	return errs
}

func validatePermissionType(errs *validationErrors, permissionType string, required bool) {
	switch {
	case permissionType == "" && required:
		errs.add("permission_type", "is required")
	case len(permissionType) > maxPermissionTypeLength:
		errs.add("permission_type", "must be at most %d characters", maxPermissionTypeLength)
	}
}

func parseID(errs *validationErrors, field, raw string) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		errs.add(field, "must be a positive integer")
		return 0
	}
	return id
}

func parsePagination(rawSkip, rawLimit string) (int, int, validationErrors) {
	var errs validationErrors
	skip, limit := defaultSkip, defaultLimit

	if rawSkip != "" {
		v, err := strconv.Atoi(rawSkip)
		if err != nil || v < 0 {
			errs.add("skip", "must be a non-negative integer")
		} else {
			skip = v
		}
	}
	if rawLimit != "" {
		v, err := strconv.Atoi(rawLimit)
		if err != nil || v < 1 || v > maxLimit {
			errs.add("limit", "must be an integer between 1 and %d", maxLimit)
		} else {
			limit = v
		}
	}
	return skip, limit, errs
}
