package storage

import (
	"io"
	"testing"
)

func TestArchivePutOpen(t *testing.T) {
	archive, err := NewArchive(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	name, err := archive.Put("run-42", "png", []byte("encoded bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if name != "processed_run-42.png" {
		t.Errorf("archive name = %q", name)
	}

	ok, err := archive.Exists(name)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("archived file not found")
	}

	rd, err := archive.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer rd.Close()
	data, err := io.ReadAll(rd)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "encoded bytes" {
		t.Errorf("archived content = %q", data)
	}
}

func TestArchiveDefaultsToJPEG(t *testing.T) {
	archive, err := NewArchive(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	name, err := archive.Put("run-7", "jpeg", nil)
	if err != nil {
		t.Fatal(err)
	}
	if name != "processed_run-7.jpg" {
		t.Errorf("archive name = %q", name)
	}
}

func TestArchiveRejectsTraversal(t *testing.T) {
	archive, err := NewArchive(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := archive.Open("../../etc/passwd"); err == nil {
		t.Error("path traversal was not rejected")
	}
}

func TestArchiveMissingEntry(t *testing.T) {
	archive, err := NewArchive(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ok, err := archive.Exists("processed_nope.png")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("missing entry reported as present")
	}
	if _, err := archive.Open("processed_nope.png"); err == nil {
		t.Error("opening a missing entry succeeded")
	}
}
