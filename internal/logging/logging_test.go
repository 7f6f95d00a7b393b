package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetupJSON(t *testing.T) {
	defer logrus.SetOutput(logrus.StandardLogger().Out)
	var out bytes.Buffer

	if err := Setup("debug", FormatJSON, &out); err != nil {
		t.Fatal(err)
	}
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug level, got %v", logrus.GetLevel())
	}

	logrus.WithField("op", "Find").Debug("scan")
	var entry map[string]any
	if err := json.Unmarshal(out.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", out.String(), err)
	}
	if entry["op"] != "Find" || entry["msg"] != "scan" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestSetupText(t *testing.T) {
	defer logrus.SetOutput(logrus.StandardLogger().Out)
	var out bytes.Buffer
	if err := Setup("", "", &out); err != nil {
		t.Fatal(err)
	}
	if logrus.GetLevel() != logrus.InfoLevel {
		t.Errorf("expected info level, got %v", logrus.GetLevel())
	}
	logrus.Info("hello")
	if !strings.Contains(out.String(), "msg=hello") {
		t.Errorf("expected text output, got %q", out.String())
	}
}

func TestSetupErrors(t *testing.T) {
	if err := Setup("loud", "", nil); err == nil {
		t.Error("expected error for bad level")
	}
	if err := Setup("info", "xml", nil); err == nil {
		t.Error("expected error for bad format")
	}
}
