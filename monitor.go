package telsearch

import (
	"github.com/poiesic/telsearch/core"
	"github.com/poiesic/telsearch/index"
	"github.com/poiesic/telsearch/router"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterAnalysis(analysis core.QueryAnalysis)
	AfterRetrieval(rules []router.Candidate, sparse, dense []index.Hit)
	AfterFusion(candidates []core.ScoredCandidate)
	AfterRerank(candidates []core.ScoredCandidate, crossEncoderUsed bool)
	Finish(result *core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                        {}
func (n *noopMonitor) AfterAnalysis(_ core.QueryAnalysis)                    {}
func (n *noopMonitor) AfterRetrieval(_ []router.Candidate, _, _ []index.Hit) {}
func (n *noopMonitor) AfterFusion(_ []core.ScoredCandidate)                  {}
func (n *noopMonitor) AfterRerank(_ []core.ScoredCandidate, _ bool)          {}
func (n *noopMonitor) Finish(_ *core.SearchResult)                           {}

// recordingMonitor captures every stage for Explain.
type recordingMonitor struct {
	analysis  core.QueryAnalysis
	rules     []router.Candidate
	sparse    []index.Hit
	dense     []index.Hit
	fused     []core.ScoredCandidate
	reranked  []core.ScoredCandidate
	crossUsed bool
}

var _ SearchMonitor = (*recordingMonitor)(nil)

func (m *recordingMonitor) Start(_ string) {}

func (m *recordingMonitor) AfterAnalysis(analysis core.QueryAnalysis) {
	m.analysis = analysis
}

func (m *recordingMonitor) AfterRetrieval(rules []router.Candidate, sparse, dense []index.Hit) {
	m.rules = rules
	m.sparse = sparse
	m.dense = dense
}

func (m *recordingMonitor) AfterFusion(candidates []core.ScoredCandidate) {
	m.fused = candidates
}

func (m *recordingMonitor) AfterRerank(candidates []core.ScoredCandidate, crossEncoderUsed bool) {
	m.reranked = candidates
	m.crossUsed = crossEncoderUsed
}

func (m *recordingMonitor) Finish(_ *core.SearchResult) {}
