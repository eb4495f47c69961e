package classify

import "testing"

func TestClassifyStatsAboveSixHundred(t *testing.T) {
	if got := Classify(601, "whatever"); got != ServerToOrchSta {
		t.Fatalf("Classify(601, ...) = %v, want %v", got, ServerToOrchSta)
	}
}

func TestClassifyReplyBelowTwoHundred(t *testing.T) {
	if got := Classify(199, "whatever"); got != ServerToOrchReply {
		t.Fatalf("Classify(199, ...) = %v, want %v", got, ServerToOrchReply)
	}
}

func TestClassifyReplySpecialType402(t *testing.T) {
	if got := Classify(402, "whatever"); got != ServerToOrchReply {
		t.Fatalf("Classify(402, ...) = %v, want %v", got, ServerToOrchReply)
	}
}

func TestClassifyReplyOnLiteralSubstring(t *testing.T) {
	if got := Classify(200, "this is a reply message from the server"); got != ServerToOrchReply {
		t.Fatalf("Classify with embedded 'reply message' = %v, want %v", got, ServerToOrchReply)
	}
}

func TestClassifyConfigDefault(t *testing.T) {
	if got := Classify(200, "nothing special here"); got != ServerToOrchCfg {
		t.Fatalf("Classify(200, ...) = %v, want %v", got, ServerToOrchCfg)
	}
	if got := Classify(600, "still config at the boundary"); got != ServerToOrchCfg {
		t.Fatalf("Classify(600, ...) = %v, want %v (600 is not > 600)", got, ServerToOrchCfg)
	}
}

func TestRouteAllInOneEmitsOneRecord(t *testing.T) {
	got := Route(AllInOne, 601, "whatever")
	if len(got) != 1 || got[0] != ServerToOrchSta {
		t.Fatalf("Route(AllInOne, 601, ...) = %v, want [ServerToOrchSta]", got)
	}
}

func TestRoutePatchAlwaysEmitsTwoConfigRecords(t *testing.T) {
	// Even a line that would classify as stats or reply under AllInOne
	// must, under Patch, emit two ServerToOrchCfg records.
	got := Route(Patch, 601, "this is a reply message")
	if len(got) != 2 || got[0] != ServerToOrchCfg || got[1] != ServerToOrchCfg {
		t.Fatalf("Route(Patch, 601, ...) = %v, want [ServerToOrchCfg ServerToOrchCfg]", got)
	}
}
