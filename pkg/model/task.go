package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// Task is the kind of learning problem a run solves.
type Task int

const (
	Classification Task = iota + 1
	Regression
	Clustering
)

// ErrUnknownTask is returned by ParseTask for names outside the enumeration.
var ErrUnknownTask = errors.New("model: unknown task type")

// Tasks lists every task type in declaration order.
var Tasks = []Task{Classification, Regression, Clustering}

func (t Task) String() string {
	switch t {
	case Classification:
		return "Classification"
	case Regression:
		return "Regression"
	case Clustering:
		return "Clustering"
	}
	return fmt.Sprintf("Task(%d)", int(t))
}

// Supervised reports whether the task trains against a target column.
func (t Task) Supervised() bool {
	switch t {
	case Classification, Regression:
		return true
	case Clustering:
		return false
	}
	return false
}

// ParseTask maps the wire name of a task to its value.
func ParseTask(s string) (Task, error) {
	for _, t := range Tasks {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownTask, "%q", s)
}

func (t Task) MarshalText() ([]byte, error) {
	switch t {
	case Classification, Regression, Clustering:
		return []byte(t.String()), nil
	}
	return nil, errors.Wrapf(ErrUnknownTask, "%d", int(t))
}

func (t *Task) UnmarshalText(b []byte) error {
	v, err := ParseTask(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
