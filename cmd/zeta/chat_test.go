package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestChatCmd_Help(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"chat", "--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("chat --help failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "chat message") {
		t.Errorf("expected help to mention 'chat message', got: %s", out)
	}
	if !strings.Contains(out, "--config") {
		t.Errorf("expected help to mention '--config' flag, got: %s", out)
	}
}

func TestChatCmd_WrongArgCount(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"chat", "1"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error when message argument is missing")
	}
}

func TestChatCmd_MissingConfig(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"chat", "1", "hello", "--config", "/nonexistent/zeta.yaml"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "load config") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "load config")
	}
}
