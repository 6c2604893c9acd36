package errors

import (
	stdlib "errors"
	"testing"
)

func TestABCIInfo(t *testing.T) {
	cases := map[string]struct {
		err      error
		debug    bool
		wantCode uint32
		wantLog  string
	}{
		"no error": {
			err:      nil,
			wantCode: SuccessABCICode,
			wantLog:  "",
		},
		"registered error": {
			err:      ErrUnauthorized.New("not admin"),
			wantCode: ErrUnauthorized.ABCICode(),
			wantLog:  "not admin: unauthorized",
		},
		"stdlib error is hidden": {
			err:      stdlib.New("disk on fire"),
			wantCode: internalABCICode,
			wantLog:  internalABCILog,
		},
		"stdlib error in debug mode": {
			err:      stdlib.New("disk on fire"),
			debug:    true,
			wantCode: internalABCICode,
			wantLog:  "disk on fire",
		},
		"multi error uses first code": {
			err:      Append(ErrAmount.New("zero"), ErrEmpty.New("owner")),
			wantCode: ErrAmount.ABCICode(),
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			code, log := ABCIInfo(tc.err, tc.debug)
			if code != tc.wantCode {
				t.Errorf("want code %d, got %d", tc.wantCode, code)
			}
			if tc.wantLog != "" && log != tc.wantLog {
				t.Errorf("want log %q, got %q", tc.wantLog, log)
			}
		})
	}
}

func TestRedact(t *testing.T) {
	if err := Redact(ErrPanic.New("secret"), false); err.Error() != internalABCILog {
		t.Fatalf("panic not redacted: %v", err)
	}
	if err := Redact(ErrPanic.New("secret"), true); !ErrPanic.Is(err) {
		t.Fatalf("debug mode must keep the error: %v", err)
	}
	if err := Redact(ErrLocked.New("deposit"), false); !ErrLocked.Is(err) {
		t.Fatalf("registered error must not be redacted: %v", err)
	}
}
