package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func testCamera() Camera {
	return Camera{
		Position: mgl64.Vec3{0, 1.7, 0},
		Yaw:      0,
		Pitch:    0,
		FOV:      mgl64.DegToRad(60),
		Aspect:   16.0 / 9.0,
	}
}

func TestScreenRayCenter(t *testing.T) {
	cam := testCamera()
	origin, dir := cam.ScreenRay(0, 0)

	if origin != cam.Position {
		t.Fatalf("ray origin must equal camera position, got %v", origin)
	}
	// yaw=0, pitch=0: взгляд строго в -Z
	want := mgl64.Vec3{0, 0, -1}
	if dir.Sub(want).Len() > 1e-9 {
		t.Fatalf("center ray direction %v, want %v", dir, want)
	}
}

func TestScreenRayPitch(t *testing.T) {
	cam := testCamera()
	cam.Pitch = -math.Pi / 2
	_, dir := cam.ScreenRay(0, 0)

	if dir.Sub(mgl64.Vec3{0, -1, 0}).Len() > 1e-9 {
		t.Fatalf("pitch -pi/2 must look straight down, got %v", dir)
	}
}

func TestCastPrefersInteractive(t *testing.T) {
	rc := NewRaycaster(0, []Target{
		{ID: "wall", Center: mgl64.Vec3{0, 1.7, -5}, Radius: 0.5, Kind: TargetMesh, Visible: true},
		{ID: "clue", Center: mgl64.Vec3{0, 1.7, -10}, Radius: 0.5, Kind: TargetInteractive, Interactive: true, Visible: true},
	})

	hit := rc.Cast(testCamera(), 0, 0)

	if !hit.HasHit {
		t.Fatalf("expected a scene hit")
	}
	// Интерактивная цель выигрывает даже у более близкой стены
	if hit.ObjectID != "clue" {
		t.Fatalf("expected interactive target preferred, hit %q", hit.ObjectID)
	}
	if hit.Kind != TargetInteractive {
		t.Fatalf("expected kind %q, got %q", TargetInteractive, hit.Kind)
	}
}

func TestCastPrefersVisibleNonGround(t *testing.T) {
	rc := NewRaycaster(0, []Target{
		{ID: "floor-patch", Center: mgl64.Vec3{0, 1.7, -4}, Radius: 0.5, Kind: TargetGround, Visible: true},
		{ID: "statue", Center: mgl64.Vec3{0, 1.7, -8}, Radius: 0.5, Kind: TargetSurface, Visible: true},
	})

	hit := rc.Cast(testCamera(), 0, 0)

	if hit.ObjectID != "statue" {
		t.Fatalf("expected visible non-ground target, hit %q", hit.ObjectID)
	}
}

func TestCastFallsBackToClosest(t *testing.T) {
	rc := NewRaycaster(0, []Target{
		{ID: "far", Center: mgl64.Vec3{0, 1.7, -9}, Radius: 0.5, Kind: TargetMesh},
		{ID: "near", Center: mgl64.Vec3{0, 1.7, -3}, Radius: 0.5, Kind: TargetMesh},
	})

	hit := rc.Cast(testCamera(), 0, 0)

	if hit.ObjectID != "near" {
		t.Fatalf("expected plain closest hit, got %q", hit.ObjectID)
	}
	if math.Abs(hit.Distance-2.5) > 1e-9 {
		t.Fatalf("expected entry distance 2.5, got %.6f", hit.Distance)
	}
}

func TestCastGroundFallback(t *testing.T) {
	const groundLevel = 0.0
	rc := NewRaycaster(groundLevel, nil)

	cam := testCamera()
	cam.Pitch = -math.Pi / 4 // смотрим вниз-вперёд, целей нет

	hit := rc.Cast(cam, 0, 0)

	if hit.HasHit {
		t.Fatalf("synthetic ground hit must not claim a scene object")
	}
	if hit.Kind != TargetGround {
		t.Fatalf("expected kind %q, got %q", TargetGround, hit.Kind)
	}
	// Точка обязана лежать ровно на уровне земли
	if hit.Point.Y() != groundLevel {
		t.Fatalf("expected point y exactly %.1f, got %.12f", groundLevel, hit.Point.Y())
	}
	if hit.Point.Z() >= 0 {
		t.Fatalf("expected fallback point in front of camera, got z=%.3f", hit.Point.Z())
	}
}

func TestCastGroundFallbackUpwardRay(t *testing.T) {
	// Луч в небо: пересечения с землёй нет, но точка обязана быть
	// пригодной — y принудительно на уровне земли
	rc := NewRaycaster(0, nil)
	cam := testCamera()
	cam.Pitch = math.Pi / 4

	hit := rc.Cast(cam, 0, 0)

	if hit.Kind != TargetGround {
		t.Fatalf("expected ground fallback, got %q", hit.Kind)
	}
	if hit.Point.Y() != 0 {
		t.Fatalf("expected clamped y=0, got %.6f", hit.Point.Y())
	}
}

func TestCastBehindCameraIgnored(t *testing.T) {
	rc := NewRaycaster(0, []Target{
		{ID: "behind", Center: mgl64.Vec3{0, 1.7, 5}, Radius: 0.5, Kind: TargetMesh, Visible: true},
	})

	hit := rc.Cast(testCamera(), 0, 0)

	if hit.HasHit {
		t.Fatalf("target behind the camera must not be hit, got %q", hit.ObjectID)
	}
	if hit.Kind != TargetGround {
		t.Fatalf("expected ground fallback, got %q", hit.Kind)
	}
}

func TestIntersectSphereFromInside(t *testing.T) {
	// Начало луча внутри сферы: берётся точка выхода, не отрицательная
	d, ok := intersectSphere(mgl64.Vec3{}, mgl64.Vec3{0, 0, -1}, mgl64.Vec3{0, 0, -0.2}, 1.0)
	if !ok {
		t.Fatalf("expected hit from inside the sphere")
	}
	if d < 0 {
		t.Fatalf("expected non-negative exit distance, got %.4f", d)
	}
}
