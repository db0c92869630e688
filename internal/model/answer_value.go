package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

var errAnswerEncoding = errors.New("answer must be a string or a list of strings")

// AnswerValue is a submitted answer: either a single string or a list of strings.
// The zero value means "no answer".
type AnswerValue struct {
	text   string
	list   []string
	isList bool
	set    bool
}

func TextAnswer(s string) AnswerValue {
	return AnswerValue{text: s, set: true}
}

func ChoiceAnswer(choices ...string) AnswerValue {
	list := make([]string, len(choices))
	copy(list, choices)
	return AnswerValue{list: list, isList: true, set: true}
}

func (v AnswerValue) IsZero() bool { return !v.set }

func (v AnswerValue) IsList() bool { return v.set && v.isList }

func (v AnswerValue) IsText() bool { return v.set && !v.isList }

func (v AnswerValue) Text() string { return v.text }

func (v AnswerValue) List() []string {
	out := make([]string, len(v.list))
	copy(out, v.list)
	return out
}

func (v AnswerValue) String() string {
	switch {
	case !v.set:
		return "<none>"
	case v.isList:
		return fmt.Sprintf("%q", v.list)
	default:
		return fmt.Sprintf("%q", v.text)
	}
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch {
	case !v.set:
		return []byte("null"), nil
	case v.isList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	default:
		return json.Marshal(v.text)
	}
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = AnswerValue{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = TextAnswer(s)
		return nil
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return errAnswerEncoding
		}
		*v = ChoiceAnswer(list...)
		return nil
	default:
		return errAnswerEncoding
	}
}

// Value stores the answer as a JSON document.
func (v AnswerValue) Value() (driver.Value, error) {
	if !v.set {
		return nil, nil
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (v *AnswerValue) Scan(src interface{}) error {
	switch s := src.(type) {
	case nil:
		*v = AnswerValue{}
		return nil
	case []byte:
		return v.UnmarshalJSON(s)
	case string:
		return v.UnmarshalJSON([]byte(s))
	default:
		return fmt.Errorf("cannot scan %T into AnswerValue", src)
	}
}
