package cmdrunner

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"
)

func echoProgram() (prog string, args []string) {
	if runtime.GOOS == "windows" {
		return "cmd.exe", []string{"/c", "echo", "hello"}
	}
	return "echo", []string{"hello"}
}

func TestRunCapturesStdout(t *testing.T) {
	prog, args := echoProgram()
	res, err := Run(context.Background(), prog, args, Options{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Code != 0 {
		t.Fatalf("expected exit 0, got %d", res.Code)
	}
}

func TestRunNotFound(t *testing.T) {
	_, err := Run(context.Background(), "definitely-not-a-real-binary-xyz", nil, Options{Timeout: time.Second})
	if err == nil {
		t.Fatal("expected an error for a missing binary")
	}
	var cmdErr *Error
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if cmdErr.Kind != KindNotFound {
		t.Fatalf("expected KindNotFound, got %v", cmdErr.Kind)
	}
}

func TestRunTimeout(t *testing.T) {
	var prog string
	var args []string
	if runtime.GOOS == "windows" {
		prog, args = "cmd.exe", []string{"/c", "ping", "-n", "10", "127.0.0.1"}
	} else {
		prog, args = "sleep", []string{"5"}
	}
	_, err := Run(context.Background(), prog, args, Options{Timeout: 50 * time.Millisecond})
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	var cmdErr *Error
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if cmdErr.Kind != KindTimeout {
		t.Fatalf("expected KindTimeout, got %v", cmdErr.Kind)
	}
}

func TestLineWriterCallback(t *testing.T) {
	var lines []string
	lw := newLineWriter(new(noopWriter), func(l string) { lines = append(lines, l) })
	_, _ = lw.Write([]byte("first\nsecond\npartial"))
	if len(lines) != 2 || lines[0] != "first" || lines[1] != "second" {
		t.Fatalf("unexpected lines: %v", lines)
	}
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }
