// ABOUTME: Tests for the install-skill command.
// ABOUTME: Validates confirmation handling, directory creation, and file content.
package main

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestEmbeddedSkillContent(t *testing.T) {
	content, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		t.Fatalf("Failed to read embedded skill: %v", err)
	}
	s := string(content)
	for _, marker := range []string{"name: coach", "coach analyze", "coach workout generate", "coach plan generate"} {
		if !strings.Contains(s, marker) {
			t.Errorf("SKILL.md missing %q", marker)
		}
	}
}

func TestInstallSkillWithYes(t *testing.T) {
	home := t.TempDir()
	var out bytes.Buffer

	if err := installSkill(home, true, strings.NewReader(""), &out); err != nil {
		t.Fatalf("installSkill: %v", err)
	}

	written, err := os.ReadFile(skillPath(home))
	if err != nil {
		t.Fatalf("skill file not written: %v", err)
	}
	embedded, _ := skillFS.ReadFile("skill/SKILL.md")
	if !bytes.Equal(written, embedded) {
		t.Error("installed skill differs from embedded copy")
	}
	if !strings.Contains(out.String(), "Installed coach skill") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestInstallSkillDeclined(t *testing.T) {
	home := t.TempDir()
	var out bytes.Buffer

	if err := installSkill(home, false, strings.NewReader("n\n"), &out); err != nil {
		t.Fatalf("installSkill: %v", err)
	}
	if _, err := os.Stat(skillPath(home)); !os.IsNotExist(err) {
		t.Error("skill installed despite declining")
	}
	if !strings.Contains(out.String(), "Installation canceled.") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestInstallSkillConfirmedOverwrites(t *testing.T) {
	home := t.TempDir()
	if err := installSkill(home, true, strings.NewReader(""), &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := installSkill(home, false, strings.NewReader("yes\n"), &out); err != nil {
		t.Fatalf("installSkill: %v", err)
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Error("expected overwrite notice")
	}
}
