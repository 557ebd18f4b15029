package workflow

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// Done informa si el entregable cuenta como avance (aceptado o completado).
func Done(s entity.WorkflowState) bool {
	return s == entity.StateAccepted || s == entity.StateCompleted
}

// Progress avance ponderado del proyecto en porcentaje, redondeado a 2 decimales.
// Avance = Σ(peso_f * hechos_f / total_f) / Σ(peso_f) * 100, solo fases con entregables.
// Peso cero o negativo cuenta como 1; entregables sin fase conocida forman una fase de peso 1.
func Progress(phases []*entity.Phase, deliverables []*entity.Deliverable) decimal.Decimal {
	weights := make(map[string]decimal.Decimal, len(phases))
	for _, p := range phases {
		w := p.Weight
		if w.LessThanOrEqual(decimal.Zero) {
			w = decimal.NewFromInt(1)
		}
		weights[p.ID] = w
	}
	type tally struct{ done, total int64 }
	byPhase := make(map[string]*tally)
	for _, d := range deliverables {
		key := d.PhaseID
		if _, ok := weights[key]; !ok {
			key = ""
		}
		t := byPhase[key]
		if t == nil {
			t = &tally{}
			byPhase[key] = t
		}
		t.total++
		if Done(d.State) {
			t.done++
		}
	}
	num, den := decimal.Zero, decimal.Zero
	for key, t := range byPhase {
		w, ok := weights[key]
		if !ok {
			w = decimal.NewFromInt(1)
		}
		num = num.Add(w.Mul(decimal.NewFromInt(t.done)).Div(decimal.NewFromInt(t.total)))
		den = den.Add(w)
	}
	if den.IsZero() {
		return decimal.Zero.Round(2)
	}
	return num.Div(den).Mul(hundred).Round(2)
}
