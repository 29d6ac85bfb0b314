package services

import (
	"sync"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
)

// PipelineStats collects run counters. It makes no decisions.
// All methods are safe for concurrent use.
type PipelineStats struct {
	mu sync.Mutex
	s  domain.StatsSnapshot
}

// NewPipelineStats creates empty counters.
func NewPipelineStats() *PipelineStats {
	return &PipelineStats{s: domain.StatsSnapshot{
		Rejected: make(map[domain.RejectReason]int),
		Sent:     make(map[domain.Channel]int),
	}}
}

// Observe counts a processed item and the criteria it met.
func (p *PipelineStats) Observe(v Validation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.s.Processed++
	if v.ValidPrice {
		p.s.ValidPrice++
	}
	if v.RealImage {
		p.s.RealImage++
	}
	if v.InStock {
		p.s.InStock++
	}
}

// AddRejected counts a local validation rejection.
func (p *PipelineStats) AddRejected(reason domain.RejectReason) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.s.Invalid++
	p.s.Rejected[reason]++
}

// AddSent counts an entry accepted remotely.
func (p *PipelineStats) AddSent(channel domain.Channel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.s.Valid++
	p.s.Sent[channel]++
}

// AddInvalid counts an entry the remote catalog rejected.
func (p *PipelineStats) AddInvalid() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.s.Invalid++
}

// AddError counts an entry lost to a whole-batch failure.
func (p *PipelineStats) AddError() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.s.Errors++
}

// AddDeleted counts remote deletions.
func (p *PipelineStats) AddDeleted(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.s.Deleted += n
}

// Snapshot returns a copy of the counters.
func (p *PipelineStats) Snapshot() domain.StatsSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := p.s
	out.Rejected = make(map[domain.RejectReason]int, len(p.s.Rejected))
	for k, v := range p.s.Rejected {
		out.Rejected[k] = v
	}
	out.Sent = make(map[domain.Channel]int, len(p.s.Sent))
	for k, v := range p.s.Sent {
		out.Sent[k] = v
	}
	return out
}
