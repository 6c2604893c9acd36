package errors

import (
	stdlib "errors"
	"fmt"
	"strings"
	"testing"
)

func TestIs(t *testing.T) {
	cases := map[string]struct {
		kind *Error
		err  error
		want bool
	}{
		"root error": {
			kind: ErrNotFound,
			err:  ErrNotFound,
			want: true,
		},
		"wrapped once": {
			kind: ErrLocked,
			err:  Wrap(ErrLocked, "deposit"),
			want: true,
		},
		"wrapped many times": {
			kind: ErrUnauthorized,
			err:  Wrap(Wrapf(ErrUnauthorized.New("admin"), "signer %d", 2), "vault"),
			want: true,
		},
		"different kind": {
			kind: ErrExpired,
			err:  Wrap(ErrLocked, "deposit"),
			want: false,
		},
		"stdlib error": {
			kind: ErrHuman,
			err:  stdlib.New("boom"),
			want: false,
		},
		"nil kind with nil error": {
			kind: nil,
			err:  nil,
			want: true,
		},
		"field error": {
			kind: ErrAmount,
			err:  Field("Amount", ErrAmount, "must be positive"),
			want: true,
		},
		"multi error": {
			kind: ErrEmpty,
			err:  Append(ErrAmount.New("zero"), Field("Owner", ErrEmpty, "")),
			want: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.kind.Is(tc.err); got != tc.want {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
		})
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, "nothing"); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
	if err := Field("Amount", nil, "nothing"); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
	if err := Append(nil, nil); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
}

func TestWrapMessage(t *testing.T) {
	err := Wrapf(ErrInsufficientAmount, "balance %d", 7)
	if got, want := err.Error(), "balance 7: insufficient amount"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
	if !strings.Contains(fmt.Sprintf("%+v", err), "errors_test.go") {
		t.Fatalf("stack trace missing: %+v", err)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("want panic")
		}
	}()
	Register(ErrNotFound.ABCICode(), "again")
}

func TestRecover(t *testing.T) {
	fn := func() (err error) {
		defer Recover(&err)
		panic("oops")
	}
	if err := fn(); !ErrPanic.Is(err) {
		t.Fatalf("want panic error, got %v", err)
	}
}

func TestFieldErrors(t *testing.T) {
	err := Append(
		Field("Amount", ErrAmount, "zero"),
		Field("Ticker", ErrCurrency, "unknown"),
		Field("Amount", ErrOverflow, "too big"),
	)
	if n := len(FieldErrors(err, "Amount")); n != 2 {
		t.Fatalf("want 2 amount errors, got %d", n)
	}
	if n := len(FieldErrors(err, "Owner")); n != 0 {
		t.Fatalf("want no owner errors, got %d", n)
	}
}
