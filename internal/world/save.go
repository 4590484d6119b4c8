package world

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
)

// SavedTransform — единственное сохраняемое состояние сессии: позиция
// и поворот одного manipulable-объекта.
type SavedTransform struct {
	ObjectID string     `json:"object_id"`
	Position [3]float64 `json:"position"`
	Yaw      float64    `json:"yaw"`
}

// SaveTransform пишет трансформацию объекта в JSON-файл.
func SaveTransform(path string, t SavedTransform) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling saved transform: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing save file %s: %w", path, err)
	}
	return nil
}

// LoadTransform читает сохранённую трансформацию. Отсутствие файла —
// не ошибка сессии, вызывающий решает сам.
func LoadTransform(path string) (SavedTransform, error) {
	var t SavedTransform
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("reading save file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parsing save file %s: %w", path, err)
	}
	return t, nil
}

// Vec3 конвертирует сохранённую позицию в вектор.
func (t SavedTransform) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{t.Position[0], t.Position[1], t.Position[2]}
}
