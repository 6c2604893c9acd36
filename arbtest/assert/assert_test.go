package assert

import (
	"fmt"
	"testing"

	"github.com/arabica-labs/arabica/errors"
)

type tester struct {
	failed bool
}

func (t *tester) Helper()                       {}
func (t *tester) Fatal(...interface{})          { t.failed = true }
func (t *tester) Fatalf(string, ...interface{}) { t.failed = true }

func TestNil(t *testing.T) {
	var nilErr *fmtErr
	cases := map[string]struct {
		value interface{}
		fail  bool
	}{
		"nil":         {value: nil, fail: false},
		"typed nil":   {value: nilErr, fail: false},
		"error":       {value: errors.ErrEmpty, fail: true},
		"integer":     {value: 4, fail: true},
		"empty slice": {value: []int{}, fail: true},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var tt tester
			Nil(&tt, tc.value)
			if tt.failed != tc.fail {
				t.Fatalf("want failure %v, got %v", tc.fail, tt.failed)
			}
		})
	}
}

func TestIsErr(t *testing.T) {
	var tt tester
	IsErr(&tt, errors.ErrLocked, errors.Wrap(errors.ErrLocked, "deposit"))
	if tt.failed {
		t.Fatal("wrapped error must match")
	}
	IsErr(&tt, errors.ErrExpired, errors.Wrap(errors.ErrLocked, "deposit"))
	if !tt.failed {
		t.Fatal("different kind must not match")
	}
}

type fmtErr struct{}

func (*fmtErr) Error() string { return fmt.Sprint("fmt") }
