package ldif

import "testing"

func parseLines(t *testing.T, lines []string) []Record {
	t.Helper()
	return NewParser(nil).Parse(NewScanner(lines))
}

func TestParse_ModifyRecord(t *testing.T) {
	records := parseLines(t, []string{
		"# modify 1719283001 cn=admin,cn=config",
		"dn: uid=bob,ou=people,dc=example",
		"changetype: modify",
		"replace: telephoneNumber",
		"telephoneNumber: +1 408 555 1234",
		"-",
		"modifiersName: uid=admin,dc=example",
		"# end modify 1719283001",
	})
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.DN != "uid=bob,ou=people,dc=example" {
		t.Errorf("got dn %q", rec.DN)
	}
	if rec.ChangeType != "modify" {
		t.Errorf("got changetype %q, want modify", rec.ChangeType)
	}
	if rec.Actor != "uid=admin,dc=example" {
		t.Errorf("got actor %q, want the modifiersName value", rec.Actor)
	}
	if len(rec.Actions) != 1 || rec.Actions[0].Op != "replace" || rec.Actions[0].Attr != "telephoneNumber" {
		t.Errorf("got actions %v", rec.Actions)
	}
	if len(rec.Changes) != 2 {
		t.Fatalf("got %d changes, want 2", len(rec.Changes))
	}
	if rec.Changes[0].Tag != "replace:telephoneNumber" || rec.Changes[0].Value != "+1 408 555 1234" {
		t.Errorf("got change %v", rec.Changes[0])
	}
	if rec.Changes[1].Tag != "replace:modifiersName" {
		t.Errorf("got change tag %q, want replace:modifiersName", rec.Changes[1].Tag)
	}
}

func TestParse_ActorDefaultsToUnknown(t *testing.T) {
	records := parseLines(t, []string{
		"# modify 1719283001 ",
		"dn: uid=bob,ou=people,dc=example",
		"changetype: modify",
		"replace: cn",
		"cn: Bob",
		"# end",
	})
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Actor != UnknownActor {
		t.Errorf("got actor %q, want %q", records[0].Actor, UnknownActor)
	}
}

func TestParse_DeleteActorFromComment(t *testing.T) {
	records := parseLines(t, []string{
		"# delete 1719283002 cn=admin,cn=config",
		"dn: uid=bob,ou=people,dc=example",
		"changetype: delete",
		"# end delete 1719283002",
	})
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Actor != "cn=admin,cn=config" {
		t.Errorf("got actor %q, want the comment actor", records[0].Actor)
	}
	if records[0].ChangeType != ChangeTypeDelete {
		t.Errorf("got changetype %q, want delete", records[0].ChangeType)
	}
}

func TestParse_AddFallsBackToChangetypeTag(t *testing.T) {
	records := parseLines(t, []string{
		"# add 1719283000 cn=admin,cn=config",
		"dn: uid=bob,ou=people,dc=example",
		"changetype: add",
		"objectClass: inetOrgPerson",
		"uid: bob",
		"# end add 1719283000",
	})
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if len(rec.Actions) != 0 {
		t.Errorf("got actions %v, want none for a whole-entry add", rec.Actions)
	}
	if len(rec.Changes) != 2 {
		t.Fatalf("got %d changes, want 2", len(rec.Changes))
	}
	if rec.Changes[0].Tag != "add:objectClass" || rec.Changes[1].Tag != "add:uid" {
		t.Errorf("got tags %q, %q, want changetype-prefixed tags", rec.Changes[0].Tag, rec.Changes[1].Tag)
	}
}

func TestParse_IgnoredAttributeValueSuppressed(t *testing.T) {
	records := parseLines(t, []string{
		"# modify 1719283001 cn=admin,cn=config",
		"dn: uid=bob,ou=people,dc=example",
		"changetype: modify",
		"replace: userPassword",
		"userPassword: hunter2",
		"# end",
	})
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	// The operation line is visible; the value line is not.
	if len(rec.Actions) != 1 || rec.Actions[0].Attr != "userPassword" {
		t.Errorf("got actions %v", rec.Actions)
	}
	for _, c := range rec.Changes {
		if c.Value == "hunter2" {
			t.Fatal("ignored attribute value leaked into record changes")
		}
	}
}

func TestParse_IncompleteTrailingRecordDropped(t *testing.T) {
	records := parseLines(t, []string{
		"# modify 1719283001 cn=admin,cn=config",
		"dn: uid=bob,ou=people,dc=example",
		"changetype: modify",
		"replace: cn",
	})
	if len(records) != 0 {
		t.Errorf("got %d records, want 0 for input cut off mid-record", len(records))
	}
}

func TestParse_RecordWithoutDNDropped(t *testing.T) {
	records := parseLines(t, []string{
		"# modify 1719283001 cn=admin,cn=config",
		"changetype: modify",
		"# end",
		"# add 1719283002 cn=admin,cn=config",
		"dn: uid=carol,ou=people,dc=example",
		"changetype: add",
		"uid: carol",
		"# end",
	})
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].DN != "uid=carol,ou=people,dc=example" {
		t.Errorf("got dn %q, want the second record", records[0].DN)
	}
}

func TestParse_AttributesOutsideRecordSkipped(t *testing.T) {
	records := parseLines(t, []string{
		"dn: uid=stray,ou=people,dc=example",
		"cn: stray",
		"# modify 1719283001 cn=admin,cn=config",
		"dn: uid=bob,ou=people,dc=example",
		"changetype: modify",
		"replace: cn",
		"cn: Bob",
		"# end",
	})
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].DN != "uid=bob,ou=people,dc=example" {
		t.Errorf("stray dn captured: %q", records[0].DN)
	}
}

func TestParse_MultipleRecordsInOrder(t *testing.T) {
	records := parseLines(t, []string{
		"# add 1719283000 cn=admin,cn=config",
		"dn: uid=alice,ou=people,dc=example",
		"changetype: add",
		"uid: alice",
		"# end",
		"# delete 1719283001 cn=admin,cn=config",
		"dn: uid=bob,ou=people,dc=example",
		"changetype: delete",
		"# end",
	})
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ChangeType != ChangeTypeAdd || records[1].ChangeType != ChangeTypeDelete {
		t.Errorf("got order %q, %q", records[0].ChangeType, records[1].ChangeType)
	}
}
