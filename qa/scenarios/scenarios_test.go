package scenarios

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no scenarios found")
	}
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			t.Fatalf("load %s: %v", f, err)
		}
		t.Run(sc.Name, func(t *testing.T) {
			RunScenario(t, sc)
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load("no-file.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte(":"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Fatal("expected unmarshal error")
	}
	unknown := filepath.Join(dir, "unknown.yaml")
	if err := os.WriteFile(unknown, []byte("name: x\nsteps:\n  - action: skip\n    date: \"2025-01-01\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(unknown); err == nil {
		t.Fatal("expected unknown action error")
	}
}

func TestSubjectDefToModel(t *testing.T) {
	sub, err := SubjectDef{Name: "A", ExamDate: "2025-02-01", Difficulty: 2, Hours: 3}.ToModel()
	if err != nil {
		t.Fatal(err)
	}
	if sub.MinutesRequired() != 180 {
		t.Fatalf("unexpected minutes %d", sub.MinutesRequired())
	}
	if _, err := (SubjectDef{Name: "A", ExamDate: "soon"}).ToModel(); err == nil {
		t.Fatal("expected date error")
	}
}
