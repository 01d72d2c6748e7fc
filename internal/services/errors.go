package services

import (
	"errors"
	"fmt"

	"github.com/iitp-cep/portal-service/internal/validator"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrConflict         = errors.New("resource conflict")

	// Gate errors
	ErrSystemOffline  = errors.New("portal is offline")
	ErrInvalidPIN     = errors.New("invalid access PIN")
	ErrUserBanned     = errors.New("user is banned")
	ErrSessionExpired = errors.New("session expired or missing")

	// Course errors
	ErrCourseNotFound      = errors.New("course not found")
	ErrCourseDuplicateCode = errors.New("course code already exists")
	ErrCourseHasContent    = errors.New("course still has assessments attached")

	// Assessment errors
	ErrAssessmentNotFound  = errors.New("assessment not found")
	ErrAssessmentNotLive   = errors.New("assessment is not live")
	ErrAssessmentNotOpen   = errors.New("assessment is outside its availability window")
	ErrAssessmentNoContent = errors.New("assessment has no questions")
	ErrInvalidKind         = errors.New("invalid assessment kind")

	// Question errors
	ErrQuestionNotFound   = errors.New("question not found")
	ErrImportEmpty        = errors.New("import text contains no questions")
	ErrImportMalformed    = errors.New("import text is malformed")

	// Calendar errors
	ErrEventNotFound = errors.New("calendar event not found")

	// User errors
	ErrUserNotFound = errors.New("user not found")
)

// ===== CUSTOM ERROR TYPES =====

type ValidationError = validator.ValidationError
type ValidationErrors = validator.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

type PermissionError struct {
	Username   string `json:"username"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d - %s",
		pe.Username, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message, Context: context}
}

func NewPermissionError(username string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		Username:   username,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound reports whether err is any of the "not found" conditions.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrAssessmentNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsUnauthorized reports whether err is an access failure.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrSessionExpired) ||
		errors.Is(err, ErrUserBanned) ||
		errors.Is(err, ErrInvalidPIN) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule reports whether err is a business rule violation.
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict reports whether err is a resource conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrCourseDuplicateCode) ||
		errors.Is(err, ErrCourseHasContent)
}

// IsUnavailable reports whether err means the requested content is not
// currently open to visitors.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrSystemOffline) ||
		errors.Is(err, ErrAssessmentNotLive) ||
		errors.Is(err, ErrAssessmentNotOpen) ||
		errors.Is(err, ErrAssessmentNoContent)
}
