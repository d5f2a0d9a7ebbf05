package entity

import (
	"reflect"
	"testing"
)

func TestProperties_Get(t *testing.T) {
	props := Properties{
		"status": "online",
		"hardware": map[string]any{
			"model": "esp32-s3",
			"sensors": []any{
				map[string]any{"type": "temperature", "unit": "celsius"},
			},
		},
		"config": map[string]any{
			"readingInterval": 60.0,
		},
	}

	tests := []struct {
		name string
		path string
		def  any
		want any
	}{
		{"top-level scalar", "status", nil, "online"},
		{"nested scalar", "hardware.model", nil, "esp32-s3"},
		{"nested number", "config.readingInterval", nil, 60.0},
		{"missing top-level key", "location", "unknown", "unknown"},
		{"missing nested key", "hardware.firmware", nil, nil},
		{"path through scalar", "status.nested", "fallback", "fallback"},
		{"path through list", "hardware.sensors.type", "fallback", "fallback"},
		{"empty path", "", "fallback", "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := props.Get(tt.path, tt.def)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Get(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestProperties_Get_NilMap(t *testing.T) {
	var props Properties
	if got := props.Get("anything", "default"); got != "default" {
		t.Errorf("Get() on nil map = %v, want default", got)
	}
}

func TestProperties_Set(t *testing.T) {
	t.Run("creates intermediate containers", func(t *testing.T) {
		props := Properties{}
		props.Set("config.calibration.ph.offset", 0.12)

		if got := props.Get("config.calibration.ph.offset", nil); got != 0.12 {
			t.Errorf("Get() after Set() = %v, want 0.12", got)
		}
	})

	t.Run("preserves sibling keys", func(t *testing.T) {
		props := Properties{
			"config": map[string]any{
				"readingInterval": 60.0,
				"alertsEnabled":   true,
			},
		}

		props.Set("config.readingInterval", 30.0)

		if got := props.Get("config.readingInterval", nil); got != 30.0 {
			t.Errorf("updated key = %v, want 30.0", got)
		}
		if got := props.Get("config.alertsEnabled", nil); got != true {
			t.Errorf("sibling key = %v, want true (must be preserved)", got)
		}
	})

	t.Run("replaces scalar intermediate with container", func(t *testing.T) {
		props := Properties{"status": "online"}
		props.Set("status.detail", "running")

		if got := props.Get("status.detail", nil); got != "running" {
			t.Errorf("Get() = %v, want running", got)
		}
	})

	t.Run("overwrites existing value", func(t *testing.T) {
		props := Properties{"status": "online"}
		props.Set("status", "offline")

		if got := props.Get("status", nil); got != "offline" {
			t.Errorf("Get() = %v, want offline", got)
		}
	})
}

func TestProperties_Has(t *testing.T) {
	props := Properties{
		"status": "online",
		"config": map[string]any{"mode": nil},
	}

	if !props.Has("status") {
		t.Error("Has(status) = false, want true")
	}
	if !props.Has("config.mode") {
		t.Error("Has(config.mode) = false, want true (nil value still counts)")
	}
	if props.Has("config.missing") {
		t.Error("Has(config.missing) = true, want false")
	}
}

func TestProperties_Delete(t *testing.T) {
	props := Properties{
		"config": map[string]any{
			"readingInterval": 60.0,
			"alertsEnabled":   true,
		},
	}

	props.Delete("config.readingInterval")

	if props.Has("config.readingInterval") {
		t.Error("deleted path still present")
	}
	if !props.Has("config.alertsEnabled") {
		t.Error("sibling key removed by Delete")
	}

	// Missing paths are a no-op
	props.Delete("config.nothing.here")
}

func TestProperties_DeepCopy(t *testing.T) {
	original := Properties{
		"hardware": map[string]any{
			"sensors": []any{
				map[string]any{"type": "temperature"},
			},
		},
	}

	cpy := original.DeepCopy()
	cpy.Set("hardware.model", "esp32-s3")

	sensors := cpy.Get("hardware.sensors", nil).([]any)
	sensors[0].(map[string]any)["type"] = "ph"

	if original.Has("hardware.model") {
		t.Error("mutation of copy leaked into original map")
	}
	origSensors := original.Get("hardware.sensors", nil).([]any)
	if origSensors[0].(map[string]any)["type"] != "temperature" {
		t.Error("mutation of copied list element leaked into original")
	}
}

func TestEntity_DeepCopy(t *testing.T) {
	org := "org-1"
	e := &Entity{
		ID:             "ent-1",
		EntityType:     TypeBioreactor,
		Name:           "Reactor A",
		Properties:     Properties{"status": "running"},
		Status:         StatusActive,
		OrganizationID: &org,
		Revision:       3,
	}

	cpy := e.DeepCopy()
	cpy.Name = "Reactor B"
	cpy.Properties.Set("status", "idle")

	if e.Name != "Reactor A" {
		t.Errorf("Name = %q after copy mutation, want %q", e.Name, "Reactor A")
	}
	if got := e.Properties.Get("status", nil); got != "running" {
		t.Errorf("Properties leaked: status = %v, want running", got)
	}
}

func TestEntity_InNamespace(t *testing.T) {
	tests := []struct {
		entityType string
		ns         string
		want       bool
	}{
		{"device.bioreactor", "device", true},
		{"device", "device", true},
		{"device.esp32.rev2", "device", true},
		{"devices", "device", false},
		{"organization", "device", false},
		{"device.bioreactor", "device.bioreactor", true},
	}

	for _, tt := range tests {
		e := &Entity{EntityType: tt.entityType}
		if got := e.InNamespace(tt.ns); got != tt.want {
			t.Errorf("InNamespace(%q) for type %q = %v, want %v", tt.ns, tt.entityType, got, tt.want)
		}
	}
}
