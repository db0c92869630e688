package model

import (
	"errors"
	"fmt"
	"sort"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	QuestionMCQSingle   QuestionType = "mcq_single"
	QuestionMCQMultiple QuestionType = "mcq_multiple"
	QuestionTrueFalse   QuestionType = "true_false"
	QuestionShortAnswer QuestionType = "short_answer"
)

var (
	ErrInvalidQuestion = errors.New("invalid question definition")
	ErrAnswerShape     = errors.New("answer shape does not match question type")
)

// AssessmentQuestion is the stored row. Definition() turns it into the typed form used for grading.
// swagger:model AssessmentQuestion
type AssessmentQuestion struct {
	BaseModel
	TemplateID     uint                        `gorm:"index;not null" json:"templateId"`
	Text           string                      `gorm:"type:text;not null" json:"questionText"`
	Type           QuestionType                `gorm:"size:32;not null" json:"questionType"`
	Options        datatypes.JSONSlice[string] `json:"options,omitempty"`
	CorrectAnswers datatypes.JSONSlice[string] `json:"correctAnswers,omitempty"`
	Points         int                         `gorm:"not null" json:"points"`
	OrderIndex     int                         `gorm:"not null;default:0" json:"orderIndex"`
}

func (AssessmentQuestion) TableName() string {
	return "assessment_questions"
}

// Grade is the outcome of auto-grading one answer. Determinable is false for
// answers that need a human reviewer.
type Grade struct {
	Determinable bool
	Correct      bool
}

// Definition is the per-type view of a question. Each variant carries only the
// fields meaningful to its type.
type Definition interface {
	Type() QuestionType
	CheckShape(v AnswerValue) error
	Grade(v AnswerValue) Grade
}

type SingleChoice struct {
	Options []string
	Correct string
}

type MultipleChoice struct {
	Options []string
	Correct []string
}

type TrueFalse struct {
	Options []string
	Correct string
}

type ShortAnswer struct {
	// Reference answers shown to reviewers; never used for auto-grading.
	Reference []string
}

func (SingleChoice) Type() QuestionType   { return QuestionMCQSingle }
func (MultipleChoice) Type() QuestionType { return QuestionMCQMultiple }
func (TrueFalse) Type() QuestionType      { return QuestionTrueFalse }
func (ShortAnswer) Type() QuestionType    { return QuestionShortAnswer }

func checkText(t QuestionType, v AnswerValue) error {
	if v.IsZero() || v.IsText() {
		return nil
	}
	return fmt.Errorf("%w: %s expects a single value", ErrAnswerShape, t)
}

func (q SingleChoice) CheckShape(v AnswerValue) error   { return checkText(q.Type(), v) }
func (q TrueFalse) CheckShape(v AnswerValue) error      { return checkText(q.Type(), v) }
func (q ShortAnswer) CheckShape(v AnswerValue) error    { return checkText(q.Type(), v) }
func (q MultipleChoice) CheckShape(v AnswerValue) error {
	if v.IsZero() || v.IsList() {
		return nil
	}
	return fmt.Errorf("%w: %s expects a list of values", ErrAnswerShape, q.Type())
}

func (q SingleChoice) Grade(v AnswerValue) Grade {
	return Grade{Determinable: true, Correct: v.IsText() && v.Text() == q.Correct}
}

func (q TrueFalse) Grade(v AnswerValue) Grade {
	return Grade{Determinable: true, Correct: v.IsText() && v.Text() == q.Correct}
}

// Grade compares the selection with the correct set as a multiset; no partial credit.
func (q MultipleChoice) Grade(v AnswerValue) Grade {
	if !v.IsList() {
		return Grade{Determinable: true}
	}
	return Grade{Determinable: true, Correct: sameMultiset(v.List(), q.Correct)}
}

func (ShortAnswer) Grade(AnswerValue) Grade {
	return Grade{}
}

func sameMultiset(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// Definition validates the stored row against its type's invariants.
func (q *AssessmentQuestion) Definition() (Definition, error) {
	if q.Points <= 0 {
		return nil, fmt.Errorf("%w: question %d has non-positive points", ErrInvalidQuestion, q.ID)
	}
	options := []string(q.Options)
	correct := []string(q.CorrectAnswers)

	switch q.Type {
	case QuestionMCQSingle:
		if len(correct) != 1 {
			return nil, fmt.Errorf("%w: question %d needs exactly one correct answer", ErrInvalidQuestion, q.ID)
		}
		return SingleChoice{Options: options, Correct: correct[0]}, nil
	case QuestionTrueFalse:
		if len(correct) != 1 {
			return nil, fmt.Errorf("%w: question %d needs exactly one correct answer", ErrInvalidQuestion, q.ID)
		}
		return TrueFalse{Options: options, Correct: correct[0]}, nil
	case QuestionMCQMultiple:
		if len(correct) == 0 {
			return nil, fmt.Errorf("%w: question %d needs at least one correct answer", ErrInvalidQuestion, q.ID)
		}
		return MultipleChoice{Options: options, Correct: correct}, nil
	case QuestionShortAnswer:
		return ShortAnswer{Reference: correct}, nil
	default:
		return nil, fmt.Errorf("%w: question %d has unknown type %q", ErrInvalidQuestion, q.ID, q.Type)
	}
}

// Manual reports whether answers to this question need a reviewer.
func (q *AssessmentQuestion) Manual() bool {
	return q.Type == QuestionShortAnswer
}
