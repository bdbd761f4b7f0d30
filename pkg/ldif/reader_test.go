package ldif

import "testing"

func collect(s *Scanner) []Line {
	var out []Line
	for {
		line, ok := s.Next()
		if !ok {
			return out
		}
		out = append(out, line)
	}
}

func TestScanner_AttributeLine(t *testing.T) {
	lines := collect(NewScanner([]string{"cn: Bob Smith"}))
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if lines[0].Attr != "cn" || lines[0].Value != "Bob Smith" {
		t.Errorf("got %q=%q, want cn=Bob Smith", lines[0].Attr, lines[0].Value)
	}
}

func TestScanner_ContinuationFolding(t *testing.T) {
	lines := collect(NewScanner([]string{
		"description: a value that",
		" continues on the next line",
	}))
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	want := "a value thatcontinues on the next line"
	if lines[0].Value != want {
		t.Errorf("got %q, want %q", lines[0].Value, want)
	}
}

func TestScanner_Base64Value(t *testing.T) {
	// "dc=example" base64-encoded.
	lines := collect(NewScanner([]string{"dn:: ZGM9ZXhhbXBsZQ=="}))
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if lines[0].Attr != "dn" || lines[0].Value != "dc=example" {
		t.Errorf("got %q=%q, want dn=dc=example", lines[0].Attr, lines[0].Value)
	}
}

func TestScanner_CommentsDeliveredRaw(t *testing.T) {
	lines := collect(NewScanner([]string{"# modify 1719283001 cn=admin,cn=config"}))
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if !lines[0].Comment {
		t.Fatal("expected a comment line")
	}
	if lines[0].Raw != "# modify 1719283001 cn=admin,cn=config" {
		t.Errorf("comment raw text altered: %q", lines[0].Raw)
	}
}

func TestScanner_SkipsBlanksAndSeparators(t *testing.T) {
	lines := collect(NewScanner([]string{
		"",
		"-",
		"cn: bob",
		"   ",
	}))
	if len(lines) != 1 || lines[0].Attr != "cn" {
		t.Errorf("got %v, want just the cn line", lines)
	}
}

func TestScanner_InvalidBase64Skipped(t *testing.T) {
	lines := collect(NewScanner([]string{"cn:: !!not-base64!!"}))
	if len(lines) != 0 {
		t.Errorf("got %v, want nothing", lines)
	}
}
