package util

import "errors"

// ErrorKind 分类业务错误，控制器据此映射HTTP状态码
type ErrorKind string

const (
	KindNotFound           ErrorKind = "not_found"
	KindInvalidState       ErrorKind = "invalid_state"
	KindValidation         ErrorKind = "validation_failure"
	KindPrecondition       ErrorKind = "precondition_not_met"
	KindAccountDeactivated ErrorKind = "account_deactivated"
)

type AppError struct {
	Kind    ErrorKind
	Message string
}

func (e *AppError) Error() string { return e.Message }

func NewAppError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

var (
	ErrEmployeeNotFound      = NewAppError(KindNotFound, "employee not found")
	ErrTestNotFound          = NewAppError(KindNotFound, "test not found")
	ErrAttemptNotFound       = NewAppError(KindNotFound, "attempt not found")
	ErrAchievementNotFound   = NewAppError(KindNotFound, "achievement not found")
	ErrAttemptNotInProgress  = NewAppError(KindInvalidState, "attempt is not in progress")
	ErrNotInModeration       = NewAppError(KindInvalidState, "attempt is not in moderation")
	ErrAttemptNotPassed      = NewAppError(KindInvalidState, "attempt has not passed")
	ErrPrerequisiteNotMet    = NewAppError(KindPrecondition, "required test has not been passed")
	ErrKarmaTooLow           = NewAppError(KindPrecondition, "karma below test requirement")
	ErrExperienceTooLow      = NewAppError(KindPrecondition, "experience below test requirement")
	ErrRetryDelayActive      = NewAppError(KindPrecondition, "retry delay has not elapsed")
	ErrTestAlreadyPassed     = NewAppError(KindPrecondition, "test already passed and is not repeatable")
	ErrAccountDeactivated    = NewAppError(KindAccountDeactivated, "employee account is deactivated")
	ErrInvalidAmount         = NewAppError(KindValidation, "amount would make experience negative")
	ErrInvalidQuestionNumber = NewAppError(KindValidation, "question number out of range")
	ErrNotTextQuestion       = NewAppError(KindValidation, "question is not a text question")
	ErrScoreExceedsMaximum   = NewAppError(KindValidation, "score exceeds question maximum")
	ErrEmailRegistered       = NewAppError(KindValidation, "email already registered")
)

// KindOf 返回业务错误的分类，非业务错误返回空串
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
