package symtab

import "testing"

func TestInsertAndLookup(t *testing.T) {
	tab := New()
	tab.Insert("myproject.pkg.service.ProcessOrder", KindFunction)

	kind, ok := tab.Lookup("myproject.pkg.service.ProcessOrder")
	if !ok {
		t.Fatal("expected lookup to succeed")
	}
	if kind != KindFunction {
		t.Errorf("kind = %s, want %s", kind, KindFunction)
	}

	if _, ok := tab.Lookup("myproject.pkg.service.Missing"); ok {
		t.Error("expected lookup of unregistered name to fail")
	}
}

func TestByName(t *testing.T) {
	tab := New()
	tab.Insert("myproject.a.Helper", KindFunction)
	tab.Insert("myproject.b.Helper", KindFunction)
	tab.Insert("myproject.c.Other", KindFunction)

	got := tab.ByName("Helper")
	if len(got) != 2 {
		t.Fatalf("ByName(Helper) = %v, want 2 entries", got)
	}
}

func TestInsertIdempotent(t *testing.T) {
	tab := New()
	tab.Insert("myproject.a.Helper", KindFunction)
	tab.Insert("myproject.a.Helper", KindFunction)

	if got := tab.ByName("Helper"); len(got) != 1 {
		t.Errorf("re-inserting the same qualified name duplicated the index: %v", got)
	}
	if tab.Size() != 1 {
		t.Errorf("Size() = %d, want 1", tab.Size())
	}
}

func TestHasPrefix(t *testing.T) {
	tab := New()
	tab.Insert("myproject.pkg.service.ProcessOrder", KindFunction)

	if !tab.HasPrefix("myproject.pkg.service") {
		t.Error("expected HasPrefix to find the module prefix")
	}
	if tab.HasPrefix("myproject.pkg.other") {
		t.Error("expected HasPrefix to reject an unrelated prefix")
	}
}

func TestEndingWith(t *testing.T) {
	tab := New()
	tab.Insert("myproject.a.Handler.process", KindMethod)
	tab.Insert("myproject.b.Worker.process", KindMethod)

	got := tab.EndingWith("process")
	if len(got) != 2 {
		t.Fatalf("EndingWith(process) = %v, want 2 entries", got)
	}
}

func TestStripSignature(t *testing.T) {
	got := StripSignature("a.B.m(int,String)")
	if got != "a.B.m" {
		t.Errorf("StripSignature = %q, want a.B.m", got)
	}
	if got := StripSignature("a.B.m"); got != "a.B.m" {
		t.Errorf("StripSignature on a name with no signature changed it: %q", got)
	}
}

func TestCommonPrefixLen(t *testing.T) {
	n := CommonPrefixLen("myproject.a.b.Foo", "myproject.a.c.Bar")
	if n != 2 {
		t.Errorf("CommonPrefixLen = %d, want 2", n)
	}
}

func TestVerifyCleanTable(t *testing.T) {
	tab := New()
	tab.Insert("myproject.a.Foo", KindFunction)
	tab.Insert("myproject.b.Bar", KindClass)

	if problems := tab.Verify(); len(problems) != 0 {
		t.Errorf("Verify() on a clean table reported problems: %v", problems)
	}
}
