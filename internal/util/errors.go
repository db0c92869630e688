package util

import (
	"errors"
	"fmt"
)

var (
	ErrTemplateNotFound    = errors.New("assessment template not found")
	ErrAttemptNotFound     = errors.New("attempt not found")
	ErrQuestionNotFound    = errors.New("question not found in this assessment")
	ErrAnswerNotFound      = errors.New("no answer recorded for this question")
	ErrJobNotLinked        = errors.New("job does not use this assessment")
	ErrAlreadyCompleted    = errors.New("assessment already completed")
	ErrAttemptNotActive    = errors.New("attempt is not in progress")
	ErrAttemptNotCompleted = errors.New("attempt is not completed")
	ErrNotManuallyGradable = errors.New("only short answer questions can be reviewed")
	ErrInvalidAnswerShape  = errors.New("answer shape does not match question type")
	ErrInvalidPoints       = errors.New("points out of range for this question")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrTokenRevoked        = errors.New("token has been revoked")
)

// AlreadyCompletedError carries the completed attempt so callers can redirect to its results.
type AlreadyCompletedError struct {
	AttemptID uint
}

func (e *AlreadyCompletedError) Error() string {
	return fmt.Sprintf("%s (attempt %d)", ErrAlreadyCompleted, e.AttemptID)
}

func (e *AlreadyCompletedError) Is(target error) bool {
	return target == ErrAlreadyCompleted
}
