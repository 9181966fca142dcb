package versioning

import "testing"

func TestString(t *testing.T) {
	if got := (Info{Version: "v1.2.0"}).String(); got != "v1.2.0" {
		t.Errorf("expected bare version, got %q", got)
	}
	if got := (Info{Version: "v1.2.0", Commit: "abc1234"}).String(); got != "v1.2.0 (abc1234)" {
		t.Errorf("expected version with commit, got %q", got)
	}
}

func TestGetReflectsStampedValues(t *testing.T) {
	info := Get()
	if info.Version != Version || info.Commit != Commit {
		t.Errorf("Get() = %+v, want package vars %q/%q", info, Version, Commit)
	}
}
