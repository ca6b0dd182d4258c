// Package errors provides structured error handling for Wavezly services.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Auth errors
	CodeAuthInvalidCredentials Code = "AUTH_INVALID_CREDENTIALS"
	CodeAuthSessionRequired    Code = "AUTH_SESSION_REQUIRED"
	CodeAuthCSRFInvalid        Code = "AUTH_CSRF_INVALID"
	CodeAuthPinTooWeak         Code = "AUTH_PIN_TOO_WEAK"
	CodeAuthResetTokenInvalid  Code = "AUTH_RESET_TOKEN_INVALID"
	CodeAuthResetTokenExpired  Code = "AUTH_RESET_TOKEN_EXPIRED"
	CodeAuthRateLimited        Code = "AUTH_RATE_LIMITED"
	CodeAuthForbidden          Code = "AUTH_FORBIDDEN"

	// Task errors
	CodeTaskTitleEmpty      Code = "TASK_TITLE_EMPTY"
	CodeTaskTitleTooLong    Code = "TASK_TITLE_TOO_LONG"
	CodeTaskInvalidCategory Code = "TASK_INVALID_CATEGORY"
	CodeTaskInvalidPriority Code = "TASK_INVALID_PRIORITY"
	CodeTaskInvalidStatus   Code = "TASK_INVALID_STATUS"
	CodeTaskEmptyAgencyID   Code = "TASK_EMPTY_AGENCY_ID"

	// Template errors
	CodeTemplateNameEmpty     Code = "TEMPLATE_NAME_EMPTY"
	CodeTemplateTitleEmpty    Code = "TEMPLATE_TITLE_EMPTY"
	CodeTemplateInvalidDueIn  Code = "TEMPLATE_INVALID_DUE_IN"
	CodeTemplateEmptyAgencyID Code = "TEMPLATE_EMPTY_AGENCY_ID"

	// Activity errors
	CodeActivityInvalidAction Code = "ACTIVITY_INVALID_ACTION"
	CodeActivityEmptyEntity   Code = "ACTIVITY_EMPTY_ENTITY"

	// Agency and membership errors
	CodeAgencyNameEmpty      Code = "AGENCY_NAME_EMPTY"
	CodeMemberInvalidRole    Code = "MEMBER_INVALID_ROLE"
	CodeMemberAlreadyExists  Code = "MEMBER_ALREADY_EXISTS"
	CodeUserEmailInvalid     Code = "USER_EMAIL_INVALID"
	CodeUserEmailTaken       Code = "USER_EMAIL_TAKEN"
	CodeUserDisplayNameEmpty Code = "USER_DISPLAY_NAME_EMPTY"

	// Invitation errors
	CodeInviteEmailInvalid  Code = "INVITE_EMAIL_INVALID"
	CodeInviteGrantInvalid  Code = "INVITE_GRANT_INVALID"
	CodeInviteGrantExpired  Code = "INVITE_GRANT_EXPIRED"
	CodeInviteGrantMismatch Code = "INVITE_GRANT_MISMATCH"
	CodeInviteNotPending    Code = "INVITE_NOT_PENDING"

	// AI errors
	CodeAIInputEmpty          Code = "AI_INPUT_EMPTY"
	CodeAIProviderUnavailable Code = "AI_PROVIDER_UNAVAILABLE"
	CodeAIOutputUnusable      Code = "AI_OUTPUT_UNUSABLE"

	// Analytics errors
	CodeAnalyticsInvalidInput Code = "ANALYTICS_INVALID_INPUT"

	// Digest errors
	CodeDigestInvalidDate Code = "DIGEST_INVALID_DATE"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeTaskTitleEmpty,
		CodeTaskTitleTooLong,
		CodeTaskInvalidCategory,
		CodeTaskInvalidPriority,
		CodeTaskInvalidStatus,
		CodeTaskEmptyAgencyID,
		CodeTemplateNameEmpty,
		CodeTemplateTitleEmpty,
		CodeTemplateInvalidDueIn,
		CodeTemplateEmptyAgencyID,
		CodeActivityInvalidAction,
		CodeActivityEmptyEntity,
		CodeAgencyNameEmpty,
		CodeMemberInvalidRole,
		CodeUserEmailInvalid,
		CodeUserDisplayNameEmpty,
		CodeInviteEmailInvalid,
		CodeAuthPinTooWeak,
		CodeAIInputEmpty,
		CodeAnalyticsInvalidInput,
		CodeDigestInvalidDate:
		return http.StatusBadRequest

	// Unauthorized - missing or failed authentication
	case CodeAuthInvalidCredentials,
		CodeAuthSessionRequired,
		CodeAuthResetTokenInvalid,
		CodeAuthResetTokenExpired:
		return http.StatusUnauthorized

	// Forbidden - authenticated but not allowed
	case CodeAuthCSRFInvalid,
		CodeAuthForbidden:
		return http.StatusForbidden

	// Not found
	case CodeNotFound:
		return http.StatusNotFound

	// Conflict - state disallows the operation
	case CodeMemberAlreadyExists,
		CodeUserEmailTaken,
		CodeInviteNotPending:
		return http.StatusConflict

	// Unprocessable - grant failed semantic validation
	case CodeInviteGrantInvalid,
		CodeInviteGrantExpired,
		CodeInviteGrantMismatch:
		return http.StatusUnprocessableEntity

	// Too many requests
	case CodeAuthRateLimited:
		return http.StatusTooManyRequests

	// Bad gateway - upstream AI provider failed
	case CodeAIProviderUnavailable,
		CodeAIOutputUnusable:
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
