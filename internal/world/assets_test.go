package world

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func writeAsset(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("splat"), 0644); err != nil {
		t.Fatalf("writing test asset: %v", err)
	}
	return path
}

func TestAssetLoaderPrimaryAvailable(t *testing.T) {
	dir := t.TempDir()
	primary := writeAsset(t, dir, "site.splat")

	loader := &AssetLoader{
		Primary:  primary,
		Fallback: filepath.Join(dir, "missing.splat"),
		Attempts: 2,
		Logger:   zerolog.Nop(),
	}

	path, err := loader.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if path != primary {
		t.Errorf("expected primary path %s, got %s", primary, path)
	}
}

func TestAssetLoaderFallsBack(t *testing.T) {
	dir := t.TempDir()
	fallback := writeAsset(t, dir, "site_lowres.splat")

	loader := &AssetLoader{
		Primary:  filepath.Join(dir, "missing.splat"),
		Fallback: fallback,
		Attempts: 2,
		Logger:   zerolog.Nop(),
	}

	path, err := loader.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if path != fallback {
		t.Errorf("expected fallback path %s, got %s", fallback, path)
	}
}

func TestAssetLoaderBothMissing(t *testing.T) {
	dir := t.TempDir()

	loader := &AssetLoader{
		Primary:  filepath.Join(dir, "a.splat"),
		Fallback: filepath.Join(dir, "b.splat"),
		Attempts: 1,
		Logger:   zerolog.Nop(),
	}

	if _, err := loader.Resolve(context.Background()); err == nil {
		t.Fatal("expected error when both sources are missing")
	}
}

func TestAssetLoaderNoFallbackConfigured(t *testing.T) {
	dir := t.TempDir()

	loader := &AssetLoader{
		Primary:  filepath.Join(dir, "a.splat"),
		Attempts: 1,
		Logger:   zerolog.Nop(),
	}

	if _, err := loader.Resolve(context.Background()); err == nil {
		t.Fatal("expected error when primary is missing and no fallback set")
	}
}

func TestAssetLoaderContextCancelled(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := &AssetLoader{
		Primary:    filepath.Join(dir, "a.splat"),
		Fallback:   filepath.Join(dir, "b.splat"),
		Attempts:   3,
		RetryDelay: time.Hour, // отменённый контекст должен сработать раньше
		Logger:     zerolog.Nop(),
	}

	if _, err := loader.Resolve(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestSaveLoadTransform(t *testing.T) {
	path := filepath.Join(t.TempDir(), "savegame.json")

	saved := SavedTransform{
		ObjectID: "boulder",
		Position: [3]float64{1.5, 0.85, -2},
		Yaw:      0.75,
	}
	if err := SaveTransform(path, saved); err != nil {
		t.Fatalf("SaveTransform failed: %v", err)
	}

	loaded, err := LoadTransform(path)
	if err != nil {
		t.Fatalf("LoadTransform failed: %v", err)
	}
	if loaded != saved {
		t.Errorf("roundtrip mismatch: saved %+v, loaded %+v", saved, loaded)
	}
	if loaded.Vec3().Y() != 0.85 {
		t.Errorf("Vec3 conversion wrong: %v", loaded.Vec3())
	}
}

func TestLoadTransformMissingFile(t *testing.T) {
	_, err := LoadTransform(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing save file")
	}
}

func TestLoadTransformCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "savegame.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("writing corrupt file: %v", err)
	}

	if _, err := LoadTransform(path); err == nil {
		t.Fatal("expected error for corrupt save file")
	}
}
