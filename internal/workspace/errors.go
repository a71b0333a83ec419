package workspace

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx response from the platform.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("workspace: %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}
	return false
}

// GraphQLError is an entry of a GraphQL response's errors array.
type GraphQLError struct {
	Message string `json:"message"`
}

// GraphQLErrors is returned when a query reports errors.
type GraphQLErrors []GraphQLError

func (e GraphQLErrors) Error() string {
	if len(e) == 1 {
		return "workspace: graphql: " + e[0].Message
	}
	return fmt.Sprintf("workspace: graphql: %s (and %d more)", e[0].Message, len(e)-1)
}
