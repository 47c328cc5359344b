package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/teranos/tip/dom"
	"github.com/teranos/tip/pulse"
)

// Epoch is the virtual start time of every test loop
var Epoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// Host is a parsed document and a manual loop that delivers its mutations
type Host struct {
	Doc  *dom.Document
	Loop *pulse.Loop
}

// NewHost parses markup into a document driven by a manual loop.
func NewHost(t *testing.T, markup string) *Host {
	t.Helper()

	doc, err := dom.ParseString(markup)
	require.NoError(t, err, "parse test document")

	cfg := pulse.DefaultLoopConfig()
	cfg.Epoch = Epoch
	loop := pulse.NewManualLoop(cfg)
	doc.SetMutationScheduler(loop.Post)

	return &Host{Doc: doc, Loop: loop}
}

// Query returns the first element matching selector, failing the test when
// there is none.
func (h *Host) Query(t *testing.T, selector string) *dom.Element {
	t.Helper()
	el, err := h.Doc.QuerySelector(selector)
	require.NoError(t, err)
	require.NotNil(t, el, "no element matches %q", selector)
	return el
}

// Advance moves virtual time forward
func (h *Host) Advance(d time.Duration) {
	h.Loop.Advance(d)
}

// Settle fires everything due now, then one frame
func (h *Host) Settle() {
	h.Loop.Flush()
	h.Loop.Advance(h.Loop.FrameInterval())
}
