package errs

import (
	"errors"
	"testing"
	"time"
)

func TestDecodeError(t *testing.T) {
	underlying := errors.New("unexpected eof")
	err := NewDecodeError(42, underlying)

	if err.Stage != StageDecode {
		t.Errorf("Expected Stage to be StageDecode, got %v", err.Stage)
	}
	if err.Offset != 42 {
		t.Errorf("Expected Offset to be 42, got %d", err.Offset)
	}
	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := "decode failed at offset 42: unexpected eof"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestExtractError(t *testing.T) {
	underlying := errors.New("missing field")
	err := NewExtractError("metadata", underlying)

	if err.Stage != StageExtract {
		t.Errorf("Expected Stage to be StageExtract, got %v", err.Stage)
	}
	if err.Section != "metadata" {
		t.Errorf("Expected Section to be 'metadata', got %s", err.Section)
	}
	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := "extract metadata failed: missing field"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestProcessError(t *testing.T) {
	underlying := errors.New("write failed")
	err := NewProcessError("write_processed", "1001", "/inbox/1001.bin", underlying)

	if err.Stage != StageProcess {
		t.Errorf("Expected Stage to be StageProcess, got %v", err.Stage)
	}
	if err.MailID != "1001" {
		t.Errorf("Expected MailID to be '1001', got %s", err.MailID)
	}
	if err.Path != "/inbox/1001.bin" {
		t.Errorf("Expected Path to be '/inbox/1001.bin', got %s", err.Path)
	}
	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := "process write_processed failed for /inbox/1001.bin (mail 1001): write failed"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestWatchError(t *testing.T) {
	underlying := errors.New("connection refused")
	err := NewWatchError("upload", "/inbox/1001.bin", underlying).WithRecoverable(true)

	if err.Stage != StageWatch {
		t.Errorf("Expected Stage to be StageWatch, got %v", err.Stage)
	}
	if !err.IsRecoverable() {
		t.Errorf("Expected error to be marked as recoverable")
	}
	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := "watch upload failed for /inbox/1001.bin: connection refused"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestMultiError(t *testing.T) {
	err1 := errors.New("error 1")
	err2 := errors.New("error 2")
	err3 := errors.New("error 3")

	multiErr := NewMultiError([]error{err1, err2, err3})

	if len(multiErr.Errors) != 3 {
		t.Errorf("Expected 3 errors, got %d", len(multiErr.Errors))
	}
	if !multiErr.HasErrors() {
		t.Errorf("Expected HasErrors to be true")
	}

	errMsg := multiErr.Error()
	if len(errMsg) < 10 || errMsg[:10] != "3 errors: " {
		t.Errorf("Expected message to start with '3 errors: ', got %q", errMsg)
	}

	singleErr := NewMultiError([]error{err1})
	if singleErr.Error() != "error 1" {
		t.Errorf("Expected 'error 1', got %q", singleErr.Error())
	}

	emptyErr := NewMultiError([]error{})
	if emptyErr.Error() != "no errors" {
		t.Errorf("Expected 'no errors', got %q", emptyErr.Error())
	}
	if emptyErr.HasErrors() {
		t.Errorf("Expected HasErrors to be false for empty multi-error")
	}

	nilFiltered := NewMultiError([]error{err1, nil, err2, nil})
	if len(nilFiltered.Errors) != 2 {
		t.Errorf("Expected 2 errors after filtering nil, got %d", len(nilFiltered.Errors))
	}

	unwrapped := multiErr.Unwrap()
	if len(unwrapped) != 3 {
		t.Errorf("Expected 3 unwrapped errors, got %d", len(unwrapped))
	}
}

func TestTimestamp(t *testing.T) {
	err := NewProcessError("test", "1", "", errors.New("test"))
	if err.Timestamp.IsZero() {
		t.Errorf("Expected non-zero timestamp")
	}

	now := time.Now()
	if err.Timestamp.After(now) || now.Sub(err.Timestamp) > time.Second {
		t.Errorf("Timestamp seems incorrect: %v", err.Timestamp)
	}
}

func BenchmarkProcessError(b *testing.B) {
	underlying := errors.New("underlying error")
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		err := NewProcessError("test operation", "1001", "/inbox/1001.bin", underlying)
		_ = err.Error()
	}
}
