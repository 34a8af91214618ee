package diag

import (
	"fmt"
	"strings"
	"sync"
)

// Diagnostic is a single reported error or warning. Primary is always set;
// Secondary is set only for two-location diagnostics such as SymbolCollision,
// DefaultParameterOrder and ShadowedSymbol.
type Diagnostic struct {
	Kind      Kind
	Message   string
	Primary   Location
	Secondary *Location
}

func (d Diagnostic) String() string {
	sb := strings.Builder{}
	label := "error"
	if d.Kind.Severity() == SeverityWarning {
		label = "warning"
	}
	fmt.Fprintf(&sb, "%s: %s: %s\n", d.Primary, label, d.Message)
	sb.WriteString(snippet(d.Primary))
	if d.Secondary != nil {
		fmt.Fprintf(&sb, "%s: note: related location\n", *d.Secondary)
		sb.WriteString(snippet(*d.Secondary))
	}
	return sb.String()
}

// snippet renders the source line a location refers to with a caret range
// under the marked span, crumb-style.
func snippet(l Location) string {
	ln := l.line()
	caretStart := l.Col - 1
	if caretStart < 0 {
		caretStart = 0
	}
	if caretStart > len(ln) {
		caretStart = len(ln)
	}
	caretLen := l.Length
	if caretStart+caretLen > len(ln) {
		caretLen = len(ln) - caretStart
	}
	if caretLen < 1 {
		caretLen = 1
	}
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "    %s\n", ln)
	fmt.Fprintf(&sb, "    %s%s\n", strings.Repeat(" ", caretStart), strings.Repeat("^", caretLen))
	return sb.String()
}

// defaultCapacity is the fallback bound on the number of diagnostics a Bag
// retains before it starts recording only an overflow count.
const defaultCapacity = 256

// Bag is a bounded, thread-safe collector of diagnostics. Every pass writes
// into the same bag instead of returning an error immediately, so the
// pipeline can continue in the presence of errors and poison offending
// nodes rather than abort.
type Bag struct {
	mu       sync.Mutex
	cap      int
	items    []Diagnostic
	overflow int
}

// NewBag returns a Bag with room for n diagnostics before overflow tracking
// kicks in. n <= 0 selects defaultCapacity.
func NewBag(n int) *Bag {
	if n <= 0 {
		n = defaultCapacity
	}
	return &Bag{cap: n, items: make([]Diagnostic, 0, n)}
}

// Add records a diagnostic. Once the bag is full, further diagnostics are
// not dropped silently: the overflow count is incremented so Report can
// tell the user more diagnostics exist.
func (b *Bag) Add(d Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) >= b.cap {
		b.overflow++
		return
	}
	b.items = append(b.items, d)
}

// Errorf is a convenience wrapper that formats Message and adds a
// single-location diagnostic.
func (b *Bag) Errorf(kind Kind, loc Location, format string, args ...interface{}) {
	b.Add(Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Primary: loc})
}

// Errorf2 adds a two-location diagnostic (primary + secondary).
func (b *Bag) Errorf2(kind Kind, primary, secondary Location, format string, args ...interface{}) {
	sec := secondary
	b.Add(Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Primary: primary, Secondary: &sec})
}

// Items returns a snapshot slice of all diagnostics recorded so far, in the
// order they were added.
func (b *Bag) Items() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Diagnostic, len(b.items))
	copy(out, b.items)
	return out
}

// HasErrors reports whether any error-severity (non-warning) diagnostic has
// been recorded.
func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.items {
		if d.Kind.Severity() == SeverityError {
			return true
		}
	}
	return false
}

// Overflow returns the number of diagnostics dropped because the bag was
// full.
func (b *Bag) Overflow() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overflow
}

// Report drains the bag, writing every diagnostic to w in order, followed
// by an overflow notice if any diagnostics were dropped.
func (b *Bag) Report(w func(string)) {
	for _, d := range b.Items() {
		w(d.String())
	}
	if n := b.Overflow(); n > 0 {
		w(fmt.Sprintf("note: %d further diagnostics were suppressed\n", n))
	}
}
