package ports

// Resultados registrados en métricas.
const (
	OutcomeOK        = "ok"
	OutcomeIllegal   = "illegal"
	OutcomeForbidden = "forbidden"
	OutcomeExpired   = "expired"
	OutcomeExhausted = "exhausted"
	OutcomeError     = "error"
)

// Metrics puerto de salida para contadores de negocio (Prometheus o no-op).
type Metrics interface {
	TransitionObserved(from, to, outcome string)
	AccessDecided(reason string, allowed bool)
	InvitationRedeemed(outcome string)
}

// NoopMetrics descarta todas las observaciones.
type NoopMetrics struct{}

func (NoopMetrics) TransitionObserved(string, string, string) {}
func (NoopMetrics) AccessDecided(string, bool)                {}
func (NoopMetrics) InvitationRedeemed(string)                 {}
