package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCollectFrameTasks(t *testing.T) {
	dir := t.TempDir()

	files := []string{"b.png", "a.jpg", "c.JPEG", "notes.txt", "d.gif"}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatalf("failed to create subdir: %v", err)
	}

	tasks, err := collectFrameTasks(dir, "out")
	if err != nil {
		t.Fatalf("collectFrameTasks failed: %v", err)
	}

	if len(tasks) != 3 {
		t.Fatalf("got %d tasks, want 3: %v", len(tasks), tasks)
	}

	// Sorted by input path; outputs are always PNG.
	wantInputs := []string{"a.jpg", "b.png", "c.JPEG"}
	wantOutputs := []string{"a.png", "b.png", "c.png"}
	for i, task := range tasks {
		if filepath.Base(task.InputPath) != wantInputs[i] {
			t.Errorf("task %d input = %s, want %s", i, filepath.Base(task.InputPath), wantInputs[i])
		}
		if task.OutputPath != filepath.Join("out", wantOutputs[i]) {
			t.Errorf("task %d output = %s, want %s", i, task.OutputPath, filepath.Join("out", wantOutputs[i]))
		}
	}
}

func TestCollectFrameTasksMissingDir(t *testing.T) {
	if _, err := collectFrameTasks(filepath.Join(t.TempDir(), "nope"), "out"); err == nil {
		t.Error("expected error for missing input dir")
	}
}
