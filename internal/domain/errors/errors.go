// Package errors defines the user-facing error taxonomy of the bot.
package errors

import (
	"storebot/internal/errors"
)

// Kind classifies an AppError by how the bot reacts to it.
type Kind int

const (
	// KindValidation is malformed user input: re-prompt, no state change.
	KindValidation Kind = iota + 1
	// KindNotFound is a stale or unknown product/order reference.
	KindNotFound
	// KindUnavailable is a transient persistence or gateway failure.
	KindUnavailable
	// KindForbidden is a non-operator invoking a privileged action.
	KindForbidden
	// KindInternal is anything unexpected.
	KindInternal
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	Kind() Kind
	Code() string    // Business error code
	Message() string // Short message shown to the user
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	kind    Kind
	code    string
	message string
}

// NewBaseError creates a new base error
func NewBaseError(kind Kind, code, message string) *BaseError {
	return &BaseError{
		kind:    kind,
		code:    code,
		message: message,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// Kind returns the error classification
func (e *BaseError) Kind() Kind {
	return e.kind
}

// Code returns the business error code
func (e *BaseError) Code() string {
	return e.code
}

// Message returns the user-visible message
func (e *BaseError) Message() string {
	return e.message
}

// Predefined error types
var (
	ErrInvalidDuration = NewBaseError(
		KindValidation,
		"INVALID_DURATION",
		"❌ Iltimos, to'g'ri oy sonini kiriting (1 yoki undan ko'p).",
	)

	ErrInvalidProduct = NewBaseError(
		KindValidation,
		"INVALID_PRODUCT",
		"❌ Mahsulot ma'lumotlari noto'g'ri.",
	)

	ErrInvalidStatus = NewBaseError(
		KindValidation,
		"INVALID_STATUS",
		"❌ Noma'lum holat.",
	)

	ErrStatusTransition = NewBaseError(
		KindValidation,
		"STATUS_TRANSITION_REJECTED",
		"❌ Yakunlangan buyurtma holatini o'zgartirib bo'lmaydi.",
	)

	ErrEmptyInput = NewBaseError(
		KindValidation,
		"EMPTY_INPUT",
		"❌ Qiymat bo'sh bo'lmasligi kerak.",
	)

	ErrEmptyBasket = NewBaseError(
		KindValidation,
		"EMPTY_BASKET",
		"🛒 Savatingiz bo'sh.",
	)

	ErrProductNotFound = NewBaseError(
		KindNotFound,
		"PRODUCT_NOT_FOUND",
		"Dori topilmadi",
	)

	ErrOrderNotFound = NewBaseError(
		KindNotFound,
		"ORDER_NOT_FOUND",
		"Buyurtma topilmadi",
	)

	ErrSessionExpired = NewBaseError(
		KindNotFound,
		"SESSION_EXPIRED",
		"⌛ Buyurtma sessiyasi tugagan. Iltimos, qaytadan boshlang.",
	)

	ErrForbidden = NewBaseError(
		KindForbidden,
		"FORBIDDEN",
		"⛔ Sizda bu amal uchun ruxsat yo'q.",
	)

	ErrUnavailable = NewBaseError(
		KindUnavailable,
		"UNAVAILABLE",
		"⚠️ Xizmat vaqtincha ishlamayapti. Iltimos, birozdan so'ng qayta urinib ko'ring.",
	)

	ErrInternal = NewBaseError(
		KindInternal,
		"INTERNAL_ERROR",
		"⚠️ Xatolik yuz berdi. Iltimos, qayta urinib ko'ring.",
	)
)

// StorageError reports a failed persistence call, implementing the AppError interface
type StorageError struct {
	err     error
	details string
}

// NewStorageError creates a persistence-related error
func NewStorageError(err error, details string) AppError {
	return &StorageError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *StorageError) Error() string {
	return errors.Wrap(e.err, e.details).Error()
}

// Unwrap exposes the underlying cause
func (e *StorageError) Unwrap() error {
	return e.err
}

// Kind returns the error classification
func (e *StorageError) Kind() Kind {
	return KindUnavailable
}

// Code returns the business error code
func (e *StorageError) Code() string {
	return "STORAGE_FAILED"
}

// Message returns the user-visible message
func (e *StorageError) Message() string {
	return ErrUnavailable.Message()
}

// AsAppError extracts an AppError from err, falling back to ErrInternal.
func AsAppError(err error) AppError {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternal
}

// IsKind reports whether err carries an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr AppError
	if !errors.As(err, &appErr) {
		return false
	}

	return appErr.Kind() == kind
}
