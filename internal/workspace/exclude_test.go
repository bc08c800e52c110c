package workspace

import "testing"

func TestIsExcluded(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/page", false},
		{"http://example.com", false},
		{"file:///home/user/doc.pdf", false},
		{"ftp://host/file", false},
		{"", true},
		{"   ", true},
		{"chrome://settings", true},
		{"CHROME://newtab/", true},
		{"chrome-extension://abcdef/popup.html", true},
		{"chrome-untrusted://new-tab-page/", true},
		{"chrome-search://local-ntp/local-ntp.html", true},
		{"edge://flags", true},
		{"brave://rewards", true},
		{"vivaldi://settings", true},
		{"moz-extension://uuid/page.html", true},
		{"about:blank", true},
		{"about:config", true},
		{"devtools://devtools/bundled/inspector.html", true},
		{"view-source:https://example.com", true},
		{"javascript:void(0)", true},
		{"data:text/html,hi", true},
		{"blob:https://example.com/uuid", true},
	}

	for _, tt := range tests {
		if got := IsExcluded(tt.url); got != tt.want {
			t.Errorf("IsExcluded(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
