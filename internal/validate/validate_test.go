package validate

import "testing"

func TestURL(t *testing.T) {
	valid := []string{
		"https://example.com",
		"http://example.com",
		"https://joes.cafe",
		"https://sub.example-site.co.uk/path?x=1",
	}
	for _, u := range valid {
		if !URL(u) {
			t.Errorf("expected %q to be valid", u)
		}
	}

	invalid := []string{
		"example.com",
		"ftp://example.com",
		"https://",
		"http://-bad-.com",
		"not a url",
		"",
	}
	for _, u := range invalid {
		if URL(u) {
			t.Errorf("expected %q to be invalid", u)
		}
	}
}

func TestEmail(t *testing.T) {
	valid := []string{
		"joe@cafe.com",
		"contact+tag@sub.example.org",
		"a.b_c%d@example.co",
	}
	for _, e := range valid {
		if !Email(e) {
			t.Errorf("expected %q to be valid", e)
		}
	}

	invalid := []string{
		"not-an-email",
		"joe@",
		"@cafe.com",
		"joe@cafe",
		"",
	}
	for _, e := range invalid {
		if Email(e) {
			t.Errorf("expected %q to be invalid", e)
		}
	}
}

func TestNewID(t *testing.T) {
	id := NewID()
	if len(id) != 10 {
		t.Fatalf("expected 10-char id, got %q", id)
	}
	for _, c := range id {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			t.Fatalf("unexpected character %q in id %q", c, id)
		}
	}
}
