package errors

import (
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("answer", "must be one of the question options", "E")

	if err.Field != "answer" {
		t.Errorf("Expected field to be 'answer', got '%s'", err.Field)
	}

	if err.Message != "must be one of the question options" {
		t.Errorf("Unexpected message: '%s'", err.Message)
	}

	if err.Value != "E" {
		t.Errorf("Expected value to be 'E', got '%v'", err.Value)
	}

	expected := "validation error on field 'answer': must be one of the question options"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	errs = append(errs, *NewValidationError("correct_answer", "must be one of options", nil))
	expected := "validation failed: correct_answer must be one of options"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	errs = append(errs, *NewValidationError("options", "is required", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("type", "must be a valid question type (mcq, tf, text)", "question_type", "essay")

	if err.Rule != "question_type" {
		t.Errorf("Expected rule to be 'question_type', got '%s'", err.Rule)
	}

	if err.Field != "type" {
		t.Errorf("Expected field to be 'type', got '%s'", err.Field)
	}
}
