package errors

import "testing"

func TestErrorString(t *testing.T) {
	err := NewNotFound("01ABC")
	want := "NOT_FOUND: workspace not found: 01ABC"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	err := NewInvalidRequest("missing id")
	if !Is(err, ErrInvalidRequest) {
		t.Error("Is should match the error's code")
	}
	if Is(err, ErrNotFound) {
		t.Error("Is should not match a different code")
	}
	if Is(nil, ErrInternal) {
		t.Error("Is should be false for nil")
	}
}

func TestNotFoundDetails(t *testing.T) {
	err := NewNotFound("W1")
	if err.Details["id"] != "W1" {
		t.Errorf("Details[id] = %v, want W1", err.Details["id"])
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
}

func TestNewStorageWrapsCause(t *testing.T) {
	err := NewStorage(NewInternal(nil))
	if err.Code != ErrStorage {
		t.Errorf("Code = %s, want STORAGE", err.Code)
	}
	if err.Message == "storage failure" {
		t.Error("message should include the cause")
	}
}
