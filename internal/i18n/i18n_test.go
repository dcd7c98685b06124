package i18n

import "testing"

func TestTranslate(t *testing.T) {
	tr, err := New("en")
	if err != nil {
		t.Fatal(err)
	}
	if got := tr.Translate("en", "scan.customer_not_found"); got != "Customer not found" {
		t.Errorf("en lookup = %q", got)
	}
	if got := tr.Translate("es", "scan.customer_not_found"); got != "Cliente no encontrado" {
		t.Errorf("es lookup = %q", got)
	}
}

func TestTranslateFallsBackToDefaultLanguage(t *testing.T) {
	tr, err := New("en")
	if err != nil {
		t.Fatal(err)
	}
	// de.yaml has no scan.replay key; the English text must come back.
	if got := tr.Translate("de", "scan.replay"); got != "This code was just scanned, try again in a moment" {
		t.Errorf("fallback lookup = %q", got)
	}
	// Unknown language behaves the same way.
	if got := tr.Translate("fr", "error.unexpected"); got != "Something went wrong, please try again" {
		t.Errorf("unknown language lookup = %q", got)
	}
}

func TestTranslateUnknownKeyReturnsKey(t *testing.T) {
	tr, err := New("en")
	if err != nil {
		t.Fatal(err)
	}
	if got := tr.Translate("en", "no.such.key"); got != "no.such.key" {
		t.Errorf("unknown key = %q", got)
	}
}

func TestNewRejectsUnknownFallback(t *testing.T) {
	if _, err := New("xx"); err == nil {
		t.Error("expected error for unknown fallback language")
	}
}
