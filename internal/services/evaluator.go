package services

import (
	"fmt"

	"github.com/kfc-academy/learning-service/internal/models"
)

// EvaluateAnswer scores a submitted answer against a question's key.
//
// The submitted answer must be a member of the question's options; an
// out-of-domain answer fails before any correctness comparison so it can
// never reach persistence. Correctness is strict string equality with the
// question's correct answer. Pure and safe for concurrent use.
func EvaluateAnswer(question *models.QuizQuestion, answer string) (bool, error) {
	if !question.HasOption(answer) {
		return false, fmt.Errorf("%w: %q", ErrAnswerNotInOptions, answer)
	}
	return answer == question.CorrectAnswer, nil
}

// ValidateQuestionKey enforces the question invariant: the correct answer
// must be one of the options, and choice questions must declare options.
// Called on every question create and update.
func ValidateQuestionKey(question *models.QuizQuestion) error {
	if len(question.Options) == 0 {
		return ErrOptionsRequired
	}
	if !question.HasOption(question.CorrectAnswer) {
		return fmt.Errorf("%w: %q", ErrCorrectAnswerNotInOptions, question.CorrectAnswer)
	}
	return nil
}
