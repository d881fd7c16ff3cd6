// Package gesture reconoce secuencias press-hold-move sobre input de mouse y
// táctil, y las reporta como drags o taps. Cada modalidad tiene su umbral de
// activación; por debajo del umbral el gesto es un tap (abre el form de
// edición), no un drag.
package gesture

import (
	"math"
	"time"
)

// Modality selecciona la estrategia de reconocimiento.
type Modality string

const (
	ModalityPointer Modality = "pointer"
	ModalityTouch   Modality = "touch"
)

// Phase es la fase de una muestra de input cruda.
type Phase string

const (
	PhasePress   Phase = "press"
	PhaseMove    Phase = "move"
	PhaseRelease Phase = "release"
)

// Sample es una muestra cruda de input. SourceKey es la key del elemento bajo
// el puntero al presionar ("event-<id>"); TargetKey es la key del drop target
// bajo el puntero al soltar ("urgent-pet-42"), vacía si no hay ninguno.
type Sample struct {
	Phase Phase
	At    time.Time
	X, Y  float64

	SourceKey string
	TargetKey string
}

// Result es un drag terminado: origen y target (vacío = fuera de todo target).
type Result struct {
	SourceKey string
	TargetKey string
}

// Source es la capacidad de reconocimiento, una implementación por modalidad.
type Source interface {
	// Feed procesa una muestra cruda.
	Feed(s Sample)
	// OnDragEnd registra el callback de drag terminado.
	OnDragEnd(fn func(Result))
	// OnTap registra el callback de tap (gesto por debajo del umbral).
	OnTap(fn func(sourceKey string))
}

// ForModality devuelve el reconocedor de la modalidad, con sus umbrales por
// defecto (mouse: 10px de movimiento; touch: 250ms de hold + 5px de tolerancia).
func ForModality(m Modality) Source {
	if m == ModalityTouch {
		return NewTouch()
	}
	return NewPointer()
}

func dist(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}
