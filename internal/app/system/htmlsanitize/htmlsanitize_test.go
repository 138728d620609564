package htmlsanitize_test

import (
	"testing"

	"github.com/staffhub/staffhub/internal/app/system/htmlsanitize"
)

func TestStrip_Empty(t *testing.T) {
	if got := htmlsanitize.Strip(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestStrip_PlainText(t *testing.T) {
	if got := htmlsanitize.Strip("Quarterly review notes"); got != "Quarterly review notes" {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestStrip_RemovesTags(t *testing.T) {
	if got := htmlsanitize.Strip("<p>Family <strong>event</strong></p>"); got != "Family event" {
		t.Errorf("expected tags removed, got %q", got)
	}
}

func TestStrip_RemovesScript(t *testing.T) {
	if got := htmlsanitize.Strip("sick day<script>alert('x')</script>"); got != "sick day" {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestStrip_TrimsWhitespace(t *testing.T) {
	if got := htmlsanitize.Strip("  <div> travel </div>  "); got != "travel" {
		t.Errorf("expected trimmed text, got %q", got)
	}
}
