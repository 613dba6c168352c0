package sigma

import (
	"fmt"

	"github.com/utxoproofs/sigmacore/metrics"
)

// Observer is notified as ParseWithObserver/ProveWithObserver/
// VerifyWithObserver walk a proposition tree (Parse/Prove/Verify are
// these with a NoopObserver). It models the "process-wide cost-accounting
// evaluator" design note in spec.md §9: purely observational, never on the
// verification correctness path.
type Observer interface {
	OnNode(kind string, proposition SigmaBoolean)
}

// NoopObserver discards every notification.
type NoopObserver struct{}

// OnNode implements Observer.
func (NoopObserver) OnNode(string, SigmaBoolean) {}

// MeteredObserver records a Counter per node kind encountered, backed by
// the teacher's metrics package.
type MeteredObserver struct {
	reg *metrics.Registry
}

// NewMeteredObserver returns an Observer that increments
// "sigma.node.<kind>" in reg for every node it sees.
func NewMeteredObserver(reg *metrics.Registry) *MeteredObserver {
	return &MeteredObserver{reg: reg}
}

// OnNode implements Observer.
func (m *MeteredObserver) OnNode(kind string, _ SigmaBoolean) {
	m.reg.Counter(fmt.Sprintf("sigma.node.%s", kind)).Inc()
}

// observe walks prop depth-first, notifying obs of each node's kind. It is
// called by ParseWithObserver and ProveWithObserver (and so by
// VerifyWithObserver); it never affects parsing, proving or verification
// outcomes.
func observe(obs Observer, prop SigmaBoolean) {
	if obs == nil {
		return
	}
	switch p := prop.(type) {
	case ProveDlog:
		obs.OnNode("ProveDlog", p)
	case ProveDHTuple:
		obs.OnNode("ProveDHTuple", p)
	case CAND:
		obs.OnNode("CAND", p)
		for _, c := range p.Children {
			observe(obs, c)
		}
	case COR:
		obs.OnNode("COR", p)
		for _, c := range p.Children {
			observe(obs, c)
		}
	case CTHRESHOLD:
		obs.OnNode("CTHRESHOLD", p)
		for _, c := range p.Children {
			observe(obs, c)
		}
	}
}
