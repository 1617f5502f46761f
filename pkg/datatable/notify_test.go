package datatable

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestRecorder(t *testing.T) {
	t.Parallel()

	rec := &Recorder{}
	if _, ok := rec.Last(); ok {
		t.Fatal("empty recorder should have no last notification")
	}

	rec.Notify(Notification{Level: LevelSuccess, Message: "one"})
	rec.Notify(Notification{Level: LevelError, Message: "two"})

	if got := rec.Notifications(); len(got) != 2 || got[0].Message != "one" {
		t.Errorf("unexpected notifications %v", got)
	}
	if last, _ := rec.Last(); last.Message != "two" {
		t.Errorf("expected last to be two, got %q", last.Message)
	}

	rec.Reset()
	if len(rec.Notifications()) != 0 {
		t.Error("expected reset to clear notifications")
	}
}

func TestLogNotifier_Levels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n := LogNotifier{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	n.Notify(Notification{Level: LevelError, Message: "Request failed"})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["level"] != "ERROR" || entry["msg"] != "Request failed" || entry["notification"] != "error" {
		t.Errorf("unexpected log entry %v", entry)
	}
}

func TestNotifierFunc(t *testing.T) {
	t.Parallel()

	var got Notification
	var n Notifier = NotifierFunc(func(x Notification) { got = x })
	n.Notify(Notification{Level: LevelSuccess, Message: "ok"})

	if got.Message != "ok" {
		t.Errorf("expected ok, got %q", got.Message)
	}
}
