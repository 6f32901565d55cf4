package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"onmodulus/xervo/internal/domain"

	"github.com/charmbracelet/huh"
	"github.com/google/go-cmp/cmp"
)

type optionPair struct {
	Key   string
	Value string
}

var testImages = []domain.Image{
	{ID: "i-node", Name: "node", Label: "Node.js", Tags: []domain.ImageTag{{ID: "t20", Version: "20"}, {ID: "t18", Version: "18"}}},
	{ID: "i-empty", Name: "empty"},
	{ID: "i-php", Name: "php", Label: "php", Tags: []domain.ImageTag{{ID: "t8", Version: "8.3"}}},
}

func TestUsableImages_DropsUntagged(t *testing.T) {
	got := usableImages(testImages)
	if len(got) != 2 || got[0].ID != "i-node" || got[1].ID != "i-php" {
		t.Errorf("usableImages() = %+v", got)
	}
}

func TestBuildImageOptions(t *testing.T) {
	expected := []optionPair{
		{Key: "Node.js (node)", Value: "i-node"},
		{Key: "php", Value: "i-php"},
	}
	if diff := cmp.Diff(expected, optionsToPairs(buildImageOptions(usableImages(testImages)))); diff != "" {
		t.Errorf("unexpected image options (-want +got):\n%s", diff)
	}
}

func TestBuildTagOptions_MarksLatest(t *testing.T) {
	expected := []optionPair{
		{Key: "20 (latest)", Value: "t20"},
		{Key: "18", Value: "t18"},
	}
	if diff := cmp.Diff(expected, optionsToPairs(buildTagOptions(testImages[0]))); diff != "" {
		t.Errorf("unexpected tag options (-want +got):\n%s", diff)
	}
}

func TestBuildServoSizeOptions_AddsCustom(t *testing.T) {
	options := buildServoSizeOptions([]int{512, 1024}, 768)
	var keys []string
	for _, o := range options {
		keys = append(keys, o.Key)
	}
	want := []string{"512 MB", "1 GB", "Custom: 768 MB"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("unexpected size options (-want +got):\n%s", diff)
	}

	if got := buildServoSizeOptions([]int{512, 1024}, 512); len(got) != 2 {
		t.Errorf("known size added a custom option: %d options", len(got))
	}
}

func TestBuildProjectSummary(t *testing.T) {
	got := buildProjectSummary(ProjectChoice{
		Name:      "shop",
		ServoSize: 2048,
		Image:     testImages[0],
		Tag:       testImages[0].Tags[1],
	})
	want := "Name: shop\nRuntime: Node.js (node)\nVersion: 18\nServo size: 2 GB"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected summary (-want +got):\n%s", diff)
	}

	empty := buildProjectSummary(ProjectChoice{ServoSize: 512})
	if !strings.Contains(empty, "Name: Not set") || !strings.Contains(empty, "Runtime: Not selected") {
		t.Errorf("empty summary = %q", empty)
	}
}

func TestTagLookups(t *testing.T) {
	img := testImages[0]
	if !hasTag(img, "t18") || hasTag(img, "t8") {
		t.Error("hasTag() mismatch")
	}
	if got := tagByID(img, "t18"); got.Version != "18" {
		t.Errorf("tagByID() = %+v", got)
	}
	if got := imageByID(testImages, "missing"); got.ID != "i-node" {
		t.Errorf("imageByID(missing) = %q, want first image", got.ID)
	}
}

func TestSelectHeight(t *testing.T) {
	if got := selectHeight(3, 10); got != 3 {
		t.Errorf("selectHeight(3, 10) = %d", got)
	}
	if got := selectHeight(30, 10); got != 10 {
		t.Errorf("selectHeight(30, 10) = %d", got)
	}
}

func TestBuildProjectOptions(t *testing.T) {
	options := buildProjectOptions([]domain.Project{
		{ID: "p1", Name: "shop", Status: "RUNNING"},
		{ID: "p2"},
	})
	if len(options) != 2 {
		t.Fatalf("got %d options, want 2", len(options))
	}
	if options[0].Value != "p1" || !strings.Contains(options[0].Key, "shop") || !strings.Contains(options[0].Key, "(running)") {
		t.Errorf("first option = %+v", options[0])
	}
	if options[1].Key != "p2" {
		t.Errorf("unnamed project label = %q, want its id", options[1].Key)
	}
}

func TestReadPassword_NonTerminal(t *testing.T) {
	got, err := ReadPassword(strings.NewReader("hunter2\r\nignored\n"), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("ReadPassword() error = %v", err)
	}
	if got != "hunter2" {
		t.Errorf("ReadPassword() = %q, want hunter2", got)
	}
}

func TestFetch_NonTerminalRunsAction(t *testing.T) {
	ran := false
	err := Fetch(context.Background(), &bytes.Buffer{}, "Loading...", func(context.Context) error {
		ran = true
		return nil
	})
	if err != nil || !ran {
		t.Errorf("Fetch() = %v, ran = %v", err, ran)
	}
}

func TestRequired(t *testing.T) {
	if err := required("username")("  "); err == nil {
		t.Error("required() accepted blank input")
	}
	if err := required("username")("ada"); err != nil {
		t.Errorf("required() error = %v", err)
	}
}

func optionsToPairs(options []huh.Option[string]) []optionPair {
	pairs := make([]optionPair, 0, len(options))
	for _, option := range options {
		pairs = append(pairs, optionPair{Key: option.Key, Value: option.Value})
	}
	return pairs
}
