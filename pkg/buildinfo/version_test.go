package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplateAndString(t *testing.T) {
	old := Version
	Version = "v9.9.9"
	defer func() { Version = old }()

	if !strings.Contains(Template(), "version v9.9.9") {
		t.Errorf("Template() = %q", Template())
	}
	if !strings.HasPrefix(String(), "version: v9.9.9\n") {
		t.Errorf("String() = %q", String())
	}
	if got := Get(); got.Version != "v9.9.9" || got.GoVersion == "" {
		t.Errorf("Get() = %+v", got)
	}
}
