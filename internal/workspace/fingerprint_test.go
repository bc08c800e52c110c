package workspace

import "testing"

func TestFingerprintDeterministic(t *testing.T) {
	a := []TabDescriptor{
		{URL: "https://a.example", Title: "A"},
		{URL: "https://b.example", Pinned: true},
	}
	b := []TabDescriptor{
		{URL: "https://a.example", Title: "A"},
		{URL: "https://b.example", Pinned: true},
	}

	if Fingerprint(a) != Fingerprint(b) {
		t.Error("identical sequences must hash identically")
	}
}

func TestFingerprintOrderSensitive(t *testing.T) {
	a := []TabDescriptor{{URL: "https://a.example"}, {URL: "https://b.example"}}
	b := []TabDescriptor{{URL: "https://b.example"}, {URL: "https://a.example"}}

	if Fingerprint(a) == Fingerprint(b) {
		t.Error("reordered sequences should hash differently")
	}
}

func TestFingerprintFieldSensitive(t *testing.T) {
	base := []TabDescriptor{{URL: "https://a.example"}}
	pinned := []TabDescriptor{{URL: "https://a.example", Pinned: true}}
	titled := []TabDescriptor{{URL: "https://a.example", Title: "A"}}

	if Fingerprint(base) == Fingerprint(pinned) {
		t.Error("pinned flag should change the fingerprint")
	}
	if Fingerprint(base) == Fingerprint(titled) {
		t.Error("title should change the fingerprint")
	}
}

func TestFingerprintEmpty(t *testing.T) {
	if Fingerprint(nil) != Fingerprint([]TabDescriptor{}) {
		t.Error("nil and empty sequences should hash identically")
	}
}
