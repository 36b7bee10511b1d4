package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsDeterministic(t *testing.T) {
	first := PageUUID("studio", "home")
	second := PageUUID(" Studio ", "HOME")
	if first != second {
		t.Fatalf("expected normalised keys to match: %s vs %s", first, second)
	}
	if first == PageUUID("studio", "about") {
		t.Fatalf("different pages share an id")
	}
	if UUID("  ") != uuid.Nil {
		t.Fatalf("blank key should yield the nil uuid")
	}
}

func TestRevisionTracksDocument(t *testing.T) {
	page := PageUUID("studio", "home")
	a := Revision(page, []byte(`{"title":"Alpha"}`))
	b := Revision(page, []byte(`{"title":"Alpha"}`))
	c := Revision(page, []byte(`{"title":"Beta"}`))

	if a != b {
		t.Fatalf("revision not stable: %s vs %s", a, b)
	}
	if a == c {
		t.Fatalf("revision did not change with the document")
	}
	if a == Revision(PageUUID("studio", "about"), []byte(`{"title":"Alpha"}`)) {
		t.Fatalf("revision ignores the page")
	}
}
