package chchannel

// PairedCore is the shared pair of Local queues backing the two ends of
// a bidirectional in-process conversation: messages sent by the "a"
// side land in a2b and are read by the "b" side, and vice versa.
type PairedCore struct {
	a2b *Local
	b2a *Local
}

// NewPairedCore builds a PairedCore out of two fresh Local queues, both
// configured identically from cfg.
func NewPairedCore(cfg LocalConfig) (*PairedCore, error) {
	a2b, err := NewLocal(cfg)
	if err != nil {
		return nil, err
	}
	b2a, err := NewLocal(cfg)
	if err != nil {
		return nil, err
	}
	return &PairedCore{a2b: a2b, b2a: b2a}, nil
}

// Paired is one endpoint of a bidirectional in-process Channel. Two
// Paired values sharing the same PairedCore, one built with aSide=true
// and the other with aSide=false, form a full-duplex conversation: each
// may be held and driven by a different goroutine.
type Paired struct {
	core   *PairedCore
	aSide  bool
}

// NewPaired builds one endpoint over core. aSide selects which
// direction this endpoint sends on (a2b) versus receives on (b2a) - the
// other endpoint over the same core must be built with the opposite
// value.
func NewPaired(core *PairedCore, aSide bool) *Paired {
	return &Paired{core: core, aSide: aSide}
}

// NewPairedEnds is a convenience that builds both ends of a fresh
// bidirectional conversation at once.
func NewPairedEnds(cfg LocalConfig) (a *Paired, b *Paired, err error) {
	core, err := NewPairedCore(cfg)
	if err != nil {
		return nil, nil, err
	}
	return NewPaired(core, true), NewPaired(core, false), nil
}

func (p *Paired) sendSide() *Local {
	if p.aSide {
		return p.core.a2b
	}
	return p.core.b2a
}

func (p *Paired) recvSide() *Local {
	if p.aSide {
		return p.core.b2a
	}
	return p.core.a2b
}

func (p *Paired) MaxMsgSize() (int, error) {
	// Both queues in a core are configured identically.
	return p.core.a2b.MaxMsgSize()
}

func (p *Paired) Send(msg []byte) error {
	return p.sendSide().Send(msg)
}

func (p *Paired) Refresh() error {
	return p.recvSide().Refresh()
}

func (p *Paired) IncomingLen() (int, error) {
	return p.recvSide().IncomingLen()
}

func (p *Paired) Receive(buf []byte) (int, error) {
	return p.recvSide().Receive(buf)
}
