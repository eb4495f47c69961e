package logger

import (
	"bytes"
	"strings"
	"testing"

	"commtester/internal/config"
)

func TestInitLoggerRejectsNilConfig(t *testing.T) {
	if _, err := InitLogger(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestInitLoggerDefaultsInvalidLevelToInfo(t *testing.T) {
	lm, err := InitLogger(&config.LogConfig{Level: "not-a-level", Format: "text", Output: "stdout"})
	if err != nil {
		t.Fatalf("InitLogger: %v", err)
	}
	if lm.GetLogger().GetLevel().String() != "info" {
		t.Fatalf("level = %s, want info", lm.GetLogger().GetLevel())
	}
}

func TestInitLoggerRejectsUnsupportedFormat(t *testing.T) {
	if _, err := InitLogger(&config.LogConfig{Level: "info", Format: "xml", Output: "stdout"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestJSONFormatWritesJSONLines(t *testing.T) {
	lm, err := InitLogger(&config.LogConfig{Level: "info", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("InitLogger: %v", err)
	}
	var buf bytes.Buffer
	lm.GetLogger().SetOutput(&buf)
	lm.GetLogger().Info("hello")
	if !strings.Contains(buf.String(), `"message":"hello"`) {
		t.Fatalf("output = %q, want a message field", buf.String())
	}
}

func TestConnectionEntryTagsClientFields(t *testing.T) {
	lm, err := InitLogger(&config.LogConfig{Level: "info", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("InitLogger: %v", err)
	}
	var buf bytes.Buffer
	lm.GetLogger().SetOutput(&buf)

	ConnectionEntry("client", 7, 42).Info("connected")

	out := buf.String()
	for _, want := range []string{`"role":"client"`, `"customer_id":7`, `"client_id":42`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %s", want, out)
		}
	}
}

func TestConnectionEntryOmitsZeroIds(t *testing.T) {
	lm, err := InitLogger(&config.LogConfig{Level: "info", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("InitLogger: %v", err)
	}
	var buf bytes.Buffer
	lm.GetLogger().SetOutput(&buf)

	ConnectionEntry("orch", 0, 0).Info("connected")

	out := buf.String()
	if strings.Contains(out, "customer_id") || strings.Contains(out, "client_id") {
		t.Fatalf("expected no customer_id/client_id fields: %s", out)
	}
	if !strings.Contains(out, `"role":"orch"`) {
		t.Fatalf("output missing role field: %s", out)
	}
}

func TestAdapterSatisfiesDebugfInfofWarnf(t *testing.T) {
	lm, err := InitLogger(&config.LogConfig{Level: "debug", Format: "text", Output: "stdout"})
	if err != nil {
		t.Fatalf("InitLogger: %v", err)
	}
	var buf bytes.Buffer
	lm.GetLogger().SetOutput(&buf)

	a := NewAdapter(lm)
	a.Debugf("d=%d", 1)
	a.Infof("i=%d", 2)
	a.Warnf("w=%d", 3)

	out := buf.String()
	for _, want := range []string{"d=1", "i=2", "w=3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %s", want, out)
		}
	}
}
