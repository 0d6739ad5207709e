package remote

import (
	"bytes"
	"strings"
	"testing"
)

func TestResultRoundTrip(t *testing.T) {
	res := &Result{
		Stdout:   "installed node 22\n",
		Stderr:   "npm warn deprecated\n",
		ExitCode: 0,
	}

	var buf bytes.Buffer
	if err := WriteResult(&buf, res); err != nil {
		t.Fatalf("WriteResult failed: %v", err)
	}

	decoded, err := ReadResult(&buf)
	if err != nil {
		t.Fatalf("ReadResult failed: %v", err)
	}

	if *decoded != *res {
		t.Errorf("ReadResult() = %+v, want %+v", decoded, res)
	}
	if !decoded.Success() {
		t.Error("Success() = false, want true for exit code 0")
	}
}

func TestResultWireFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResult(&buf, &Result{Stderr: "boom", ExitCode: 3}); err != nil {
		t.Fatalf("WriteResult failed: %v", err)
	}

	got := strings.TrimSpace(buf.String())
	want := `{"stdout":"","stderr":"boom","exit_code":3}`
	if got != want {
		t.Errorf("encoded = %s, want %s", got, want)
	}
}

func TestReadResultInvalid(t *testing.T) {
	if _, err := ReadResult(strings.NewReader("not json")); err == nil {
		t.Error("ReadResult() with invalid input should fail")
	}
}
