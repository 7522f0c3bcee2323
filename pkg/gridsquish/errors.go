package gridsquish

import (
	"errors"
	"fmt"
)

// ErrCorruptData indicates compacted input that cannot be restored.
var ErrCorruptData = errors.New("corrupt compact data")

// ErrUnsupportedVersion indicates a snapshot written by an unknown format.
var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

// ErrInvalidEdit indicates a structural edit with a bad position or count.
var ErrInvalidEdit = errors.New("invalid structural edit")

// CorruptDataError reports the sheet and entry that could not be restored.
type CorruptDataError struct {
	Sheet string
	Key   string // empty when the sheet could not be decoded at all
	Err   error
}

func (e *CorruptDataError) Error() string {
	switch {
	case e.Sheet != "" && e.Key != "":
		return fmt.Sprintf("corrupt data in sheet %q at %s: %v", e.Sheet, e.Key, e.Err)
	case e.Sheet != "":
		return fmt.Sprintf("corrupt data in sheet %q: %v", e.Sheet, e.Err)
	case e.Key != "":
		return fmt.Sprintf("corrupt data at %s: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("corrupt data: %v", e.Err)
}

func (e *CorruptDataError) Unwrap() error {
	return e.Err
}

// Is makes every CorruptDataError match ErrCorruptData.
func (e *CorruptDataError) Is(target error) bool {
	return target == ErrCorruptData
}

// NewCorruptDataError creates a new CorruptDataError.
func NewCorruptDataError(sheet, key string, err error) *CorruptDataError {
	return &CorruptDataError{
		Sheet: sheet,
		Key:   key,
		Err:   err,
	}
}

// withSheet attributes a sheet-less corrupt data error to sheet.
func withSheet(sheet string, err error) error {
	var cde *CorruptDataError
	if errors.As(err, &cde) && cde.Sheet == "" {
		return NewCorruptDataError(sheet, cde.Key, cde.Err)
	}
	return err
}
