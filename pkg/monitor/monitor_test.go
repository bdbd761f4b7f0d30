package monitor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/directoryops/ldapwatch/pkg/event"
	"github.com/directoryops/ldapwatch/pkg/sink"
)

// captureKind is a test-only sink kind that records delivered events in
// memory, so pipeline tests can assert on exact delivery behavior.
const captureKind sink.Kind = "capture"

var (
	captured   []event.Event
	captureErr error
)

func init() {
	sink.Register(captureKind, func(*sink.Config) (sink.Sink, error) {
		return captureSink{}, nil
	})
}

type captureSink struct{}

func (captureSink) Deliver(_ context.Context, ev event.Event) error {
	if captureErr != nil {
		return captureErr
	}
	captured = append(captured, ev)
	return nil
}

func (captureSink) Close(context.Context) error { return nil }

func resetCapture(t *testing.T) {
	t.Helper()
	captured = nil
	captureErr = nil
}

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.InputFile = filepath.Join(dir, "audit.log")
	cfg.OffsetFile = filepath.Join(dir, "audit.offset")
	cfg.Output = captureKind
	return cfg
}

func writeInput(t *testing.T, cfg Config, content string) {
	t.Helper()
	if err := os.WriteFile(cfg.InputFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func appendInput(t *testing.T, cfg Config, content string) {
	t.Helper()
	f, err := os.OpenFile(cfg.InputFile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close() //nolint:errcheck // test helper
	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
}

const addRecord = "# add 1719283000 cn=admin,cn=config\n" +
	"dn: uid=bob,ou=people,dc=example\n" +
	"changetype: add\n" +
	"objectClass: inetOrgPerson\n" +
	"uid: bob\n" +
	"modifiersName: uid=admin,dc=example\n" +
	"# end add 1719283000\n"

const deleteRecord = "# delete 1719283005 cn=admin,cn=config\n" +
	"dn: uid=old,ou=people,dc=example\n" +
	"changetype: delete\n" +
	"# end delete 1719283005\n"

const partialRecordHead = "# modify 1719283001 cn=admin,cn=config\n" +
	"dn: uid=carol,ou=people,dc=example\n" +
	"changetype: modify\n" +
	"replace: cn\n"

const partialRecordTail = "cn: Carol\n" +
	"# end modify 1719283001\n"

func TestRun_EndToEnd(t *testing.T) {
	resetCapture(t)
	cfg := testConfig(t)
	writeInput(t, cfg, addRecord)

	if err := Run(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}

	if len(captured) != 1 {
		t.Fatalf("got %d events, want 1", len(captured))
	}
	ev := captured[0]
	if want := "uid=admin,dc=example add uid=bob,ou=people,dc=example "; ev.Summary != want {
		t.Errorf("got summary %q, want %q", ev.Summary, want)
	}
	if ev.Category != "ldapChange" {
		t.Errorf("got category %q, want ldapChange", ev.Category)
	}
	if _, err := os.Stat(cfg.OffsetFile); err != nil {
		t.Errorf("cursor state not written: %v", err)
	}
}

func TestRun_SecondRunWithNoNewDataIsNoop(t *testing.T) {
	resetCapture(t)
	cfg := testConfig(t)
	writeInput(t, cfg, addRecord)

	if err := Run(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(cfg.OffsetFile)
	if err != nil {
		t.Fatal(err)
	}

	if err := Run(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	if len(captured) != 1 {
		t.Fatalf("second run re-delivered: got %d events, want 1", len(captured))
	}
	after, err := os.ReadFile(cfg.OffsetFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Errorf("cursor state changed across a no-op run: %q -> %q", before, after)
	}
}

func TestRun_MissingInputFile(t *testing.T) {
	resetCapture(t)
	cfg := testConfig(t)

	if err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("expected missing input to be a no-op, got %v", err)
	}
	if len(captured) != 0 {
		t.Errorf("got %d events, want 0", len(captured))
	}
	if _, err := os.Stat(cfg.OffsetFile); !os.IsNotExist(err) {
		t.Errorf("cursor state written for a missing input: %v", err)
	}
}

func TestRun_OnlyPartialRecordIsNoop(t *testing.T) {
	resetCapture(t)
	cfg := testConfig(t)
	writeInput(t, cfg, partialRecordHead)

	if err := Run(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	if len(captured) != 0 {
		t.Fatalf("got %d events for a record still being written, want 0", len(captured))
	}
	if _, err := os.Stat(cfg.OffsetFile); !os.IsNotExist(err) {
		t.Errorf("cursor advanced into a partial record: %v", err)
	}
}

func TestRun_PartialTailNotCommitted(t *testing.T) {
	resetCapture(t)
	cfg := testConfig(t)
	writeInput(t, cfg, addRecord+partialRecordHead)

	if err := Run(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	if len(captured) != 1 {
		t.Fatalf("got %d events, want just the complete record", len(captured))
	}

	// The writer finishes the record; the next run must deliver it without
	// duplicating the first.
	appendInput(t, cfg, partialRecordTail)
	if err := Run(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	if len(captured) != 2 {
		t.Fatalf("got %d events after completion, want 2", len(captured))
	}
	if !strings.Contains(captured[1].Summary, "uid=carol,ou=people,dc=example") {
		t.Errorf("got summary %q, want the completed record", captured[1].Summary)
	}
}

func TestRun_MultipleRecordsDeliveredInOrder(t *testing.T) {
	resetCapture(t)
	cfg := testConfig(t)
	writeInput(t, cfg, addRecord+deleteRecord)

	if err := Run(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	if len(captured) != 2 {
		t.Fatalf("got %d events, want 2", len(captured))
	}
	if !strings.Contains(captured[0].Summary, " add ") || !strings.Contains(captured[1].Summary, " delete ") {
		t.Errorf("got order %q, %q", captured[0].Summary, captured[1].Summary)
	}
}

func TestRun_DeliveryFailureStillCommitsByDefault(t *testing.T) {
	resetCapture(t)
	cfg := testConfig(t)
	writeInput(t, cfg, addRecord)

	captureErr = os.ErrDeadlineExceeded
	if err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("delivery failure leaked out of a best-effort run: %v", err)
	}
	if _, err := os.Stat(cfg.OffsetFile); err != nil {
		t.Fatalf("cursor not committed despite best-effort delivery: %v", err)
	}

	// The batch is gone for good: a healthy sink sees nothing on re-run.
	captureErr = nil
	if err := Run(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	if len(captured) != 0 {
		t.Errorf("got %d events, want 0 after the batch was committed", len(captured))
	}
}

func TestRun_RequireDeliveryHoldsCursorOnFailure(t *testing.T) {
	resetCapture(t)
	cfg := testConfig(t)
	cfg.RequireDelivery = true
	writeInput(t, cfg, addRecord)

	captureErr = os.ErrDeadlineExceeded
	if err := Run(context.Background(), cfg); err == nil {
		t.Fatal("expected run to fail when required delivery fails")
	}
	if _, err := os.Stat(cfg.OffsetFile); !os.IsNotExist(err) {
		t.Fatalf("cursor committed past an undelivered batch: %v", err)
	}

	// Once the sink recovers the same batch is delivered.
	captureErr = nil
	if err := Run(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	if len(captured) != 1 {
		t.Errorf("got %d events after recovery, want 1", len(captured))
	}
}

func TestRun_Paranoid(t *testing.T) {
	resetCapture(t)
	cfg := testConfig(t)
	cfg.Paranoid = true
	writeInput(t, cfg, addRecord+deleteRecord)

	if err := Run(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	if len(captured) != 2 {
		t.Fatalf("got %d events, want 2", len(captured))
	}

	if err := Run(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	if len(captured) != 2 {
		t.Errorf("paranoid commit left the cursor short: got %d events, want 2", len(captured))
	}
}

func TestRun_IgnoredAttributeNeverReachesSink(t *testing.T) {
	resetCapture(t)
	cfg := testConfig(t)
	writeInput(t, cfg, "# modify 1719283009 cn=admin,cn=config\n"+
		"dn: uid=bob,ou=people,dc=example\n"+
		"changetype: modify\n"+
		"replace: userPassword\n"+
		"userPassword: hunter2\n"+
		"# end modify 1719283009\n")

	if err := Run(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	if len(captured) != 1 {
		t.Fatalf("got %d events, want 1", len(captured))
	}
	if strings.Contains(captured[0].Summary, "hunter2") {
		t.Error("credential value leaked into the event summary")
	}
}
