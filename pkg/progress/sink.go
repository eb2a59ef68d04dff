package progress

// Sink receives formatted progress lines from a running search. Report must never block the caller
type Sink interface {
	Report(line string)
}

type nop struct{}

func (nop) Report(string) {}

// Nop discards every line
var Nop Sink = nop{}
