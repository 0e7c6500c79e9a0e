package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorKind groups domain errors so the HTTP layer can map them once.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindConflict
	KindValidation
	KindForbidden
)

// AppError is an expected, user-recoverable failure.
type AppError struct {
	Kind    ErrorKind
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func newAppError(kind ErrorKind, msg string) *AppError {
	return &AppError{Kind: kind, Message: msg}
}

var (
	ErrTableNotFound       = newAppError(KindNotFound, "table not found")
	ErrBookingNotFound     = newAppError(KindNotFound, "booking not found")
	ErrMenuNotFound        = newAppError(KindNotFound, "menu not found or unavailable")
	ErrOrderNotFound       = newAppError(KindNotFound, "order not found")
	ErrUserNotFound        = newAppError(KindNotFound, "user not found")
	ErrSlotConflict        = newAppError(KindConflict, "table is already booked for the requested time")
	ErrTableInUse          = newAppError(KindConflict, "table has active upcoming bookings")
	ErrTableNumberTaken    = newAppError(KindConflict, "table number already exists")
	ErrCapacityInUse       = newAppError(KindConflict, "capacity is below the guest count of an upcoming booking")
	ErrCapacityExceeded    = newAppError(KindValidation, "guest count exceeds table capacity")
	ErrInvalidBooking      = newAppError(KindValidation, "invalid booking request")
	ErrInvalidTransition   = newAppError(KindValidation, "status transition not allowed")
	ErrLeadTimeTooShort    = newAppError(KindValidation, "booking can no longer be cancelled online")
	ErrBookingNotConfirmed = newAppError(KindValidation, "booking must be confirmed before ordering")
	ErrInvalidOrder        = newAppError(KindValidation, "invalid order request")
	ErrForbidden           = newAppError(KindForbidden, "you do not have permission")
)

// invalidBooking returns an ErrInvalidBooking carrying a specific reason.
func invalidBooking(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidBooking, reason)
}

// StorageError wraps an unexpected database failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// KindOf returns the kind of a domain error, or 0 for anything else.
func KindOf(err error) ErrorKind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}

// IsSerializationFailure reports whether err is a transient lock/serialization
// conflict raised by the database, which is safe to retry once.
func IsSerializationFailure(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		// 1213 deadlock, 1205 lock wait timeout
		return myErr.Number == 1213 || myErr.Number == 1205
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}
