package pipeline

// Trace records the require graph of a run: one node per executed plugin,
// in first-require order, and one edge per require relationship. Attach it
// with WithTrace; a nil *Trace is a no-op recorder.
type Trace struct {
	Nodes []string
	Edges []TraceEdge
}

// TraceEdge records that From's advance required To. From is "" for
// top-level specs.
type TraceEdge struct {
	From string
	To   string
}

func (tr *Trace) record(from, to string) {
	if tr == nil {
		return
	}
	tr.Nodes = append(tr.Nodes, to)
	if from != "" {
		tr.Edges = append(tr.Edges, TraceEdge{From: from, To: to})
	}
}
