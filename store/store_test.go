package store

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/retroblast-engine/aseanim/anim"
	"github.com/retroblast-engine/aseanim/asset"
	"github.com/retroblast-engine/aseanim/atlas"
)

func testAsset(t *testing.T, frames int) *asset.Asset {
	t.Helper()

	imgs := make([]image.Image, frames)
	durations := make([]time.Duration, frames)
	for i := range imgs {
		img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
		for p := 0; p < len(img.Pix); p += 4 {
			copy(img.Pix[p:], []uint8{uint8(50 * i), 100, 150, 255})
		}
		imgs[i] = img
		durations[i] = time.Duration(100+10*i) * time.Millisecond
	}

	info, err := anim.NewInfo(anim.InfoConfig{
		Width:     3,
		Height:    2,
		Durations: durations,
		Tags:      []anim.Tag{{Name: "all", From: 0, To: frames - 1, Direction: anim.Reverse}},
	})
	if err != nil {
		t.Fatalf("NewInfo failed: %v", err)
	}
	layout, err := atlas.Pack(imgs, atlas.WithPadding(1))
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	return &asset.Asset{Info: info, Layout: layout}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "res.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := openTestStore(t)
	want := testAsset(t, 3)

	if err := s.Put("hero", want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err := s.Get("hero")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if !reflect.DeepEqual(got.Info.Durations(), want.Info.Durations()) {
		t.Errorf("Expected durations %v, got %v", want.Info.Durations(), got.Info.Durations())
	}
	if !reflect.DeepEqual(got.Info.Tags(), want.Info.Tags()) {
		t.Errorf("Expected tags %+v, got %+v", want.Info.Tags(), got.Info.Tags())
	}
	for i := range 3 {
		r := got.Region(i)
		if r != want.Region(i) {
			t.Errorf("Frame %d: expected region %v, got %v", i, want.Region(i), r)
			continue
		}
		// png.Decode may hand back another image type for opaque atlases.
		c := color.NRGBAModel.Convert(got.Layout.Image.At(r.Min.X, r.Min.Y)).(color.NRGBA)
		if wantC := want.Layout.Image.NRGBAAt(r.Min.X, r.Min.Y); c != wantC {
			t.Errorf("Frame %d: expected %v, got %v", i, wantC, c)
		}
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Get("nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "res.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.Put("hero", testAsset(t, 2), "player"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer s.Close()

	a, err := s.Get("hero")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if a.Info.FrameCount() != 2 {
		t.Errorf("Expected 2 frames, got %d", a.Info.FrameCount())
	}
	if names, _ := s.SheetsWithTag("player"); !reflect.DeepEqual(names, []string{"hero"}) {
		t.Errorf("Expected [hero], got %v", names)
	}
}

func TestTags(t *testing.T) {
	s := openTestStore(t)

	puts := []struct {
		name string
		tags []string
	}{
		{"hero", []string{"player", "human"}},
		{"orc", []string{"enemy"}},
		{"guard", []string{"enemy", "human"}},
		{"hero", []string{"player"}},
	}
	for _, p := range puts {
		if err := s.Put(p.name, testAsset(t, 1), p.tags...); err != nil {
			t.Fatalf("Put %s failed: %v", p.name, err)
		}
	}

	sheets, err := s.Sheets()
	if err != nil {
		t.Fatalf("Sheets failed: %v", err)
	}
	if want := []string{"guard", "hero", "orc"}; !reflect.DeepEqual(sheets, want) {
		t.Errorf("Expected sheets %v, got %v", want, sheets)
	}

	tests := []struct {
		tag  string
		want []string
	}{
		{"player", []string{"hero"}},
		{"human", []string{"guard"}}, // hero was stored again without it
		{"enemy", []string{"orc", "guard"}},
		{"boss", nil},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := s.SheetsWithTag(tt.tag)
			if err != nil {
				t.Fatalf("SheetsWithTag failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	for _, name := range []string{"hero", "guard"} {
		if err := s.Put(name, testAsset(t, 1), "human"); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
	if err := s.Put("hero", testAsset(t, 1), "player"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := s.Delete("hero"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get("hero"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after Delete, got %v", err)
	}
	if got, _ := s.SheetsWithTag("human"); !reflect.DeepEqual(got, []string{"guard"}) {
		t.Errorf("Expected [guard], got %v", got)
	}
	if got, _ := s.SheetsWithTag("player"); got != nil {
		t.Errorf("Expected no player sheets, got %v", got)
	}

	if err := s.Delete("hero"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestPutRetags(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put("hero", testAsset(t, 1), "player", "human"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put("hero", testAsset(t, 1), "human", "boss"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	tests := []struct {
		tag  string
		want []string
	}{
		{"player", nil},
		{"human", []string{"hero"}},
		{"boss", []string{"hero"}},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := s.SheetsWithTag(tt.tag)
			if err != nil {
				t.Fatalf("SheetsWithTag failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}

	if err := s.Put("hero", testAsset(t, 1)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	for _, tag := range []string{"human", "boss"} {
		if got, _ := s.SheetsWithTag(tag); got != nil {
			t.Errorf("Expected no %s sheets after untagged Put, got %v", tag, got)
		}
	}
}
