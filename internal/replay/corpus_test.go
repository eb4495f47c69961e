package replay

import "testing"

func sampleLines() []string {
	return []string{
		`version=1 orchId=1 customerId=1 clientId=1 tranId=1 type=1 payload=a`,
		`version=1 orchId=1 customerId=1 clientId=1 tranId=2 type=2 payload=b`,
		`version=1 orchId=1 customerId=1 clientId=1 tranId=3 type=3 payload=c`,
		`version=1 orchId=1 customerId=1 clientId=1 tranId=4 type=4 payload=d`,
		`version=1 orchId=1 customerId=1 clientId=1 tranId=5 type=5 payload=e`,
		`version=1 orchId=1 customerId=1 clientId=1 tranId=6 type=6 payload=f`,
		`version=1 orchId=1 customerId=1 clientId=1 tranId=7 type=7 payload=g`,
	}
}

func TestBuildCorpusSkipsMalformedLines(t *testing.T) {
	lines := append(sampleLines(), "this line has no markers at all")
	corpus := BuildCorpus(lines, nil)
	if len(corpus.Lines) != 7 {
		t.Fatalf("len(corpus.Lines) = %d, want 7", len(corpus.Lines))
	}
	if len(corpus.Skipped) != 1 {
		t.Fatalf("len(corpus.Skipped) = %d, want 1", len(corpus.Skipped))
	}
}

func TestBuildCorpusAppliesIdentityOverride(t *testing.T) {
	corpus := BuildCorpus(sampleLines()[:1], &Identity{OrchId: 9, CustomerId: 8, ClientId: 7})
	if len(corpus.Lines) != 1 {
		t.Fatalf("expected one parsed line")
	}
	rec := corpus.Lines[0].Record
	if rec.OrchId != 9 || rec.CustomerId != 8 || rec.ClientId != 7 {
		t.Fatalf("identity override not applied: %+v", rec)
	}
}

func TestPartitionSevenLinesThreeWorkers(t *testing.T) {
	corpus := BuildCorpus(sampleLines(), nil)
	shards := Partition(corpus, 3)
	if len(shards) != 3 {
		t.Fatalf("len(shards) = %d, want 3", len(shards))
	}
	wantSizes := []int{3, 2, 2}
	wantStarts := []int{1, 4, 6}
	for i, shard := range shards {
		if len(shard.Lines) != wantSizes[i] {
			t.Fatalf("shard %d size = %d, want %d", i, len(shard.Lines), wantSizes[i])
		}
		if shard.StartLine != wantStarts[i] {
			t.Fatalf("shard %d start = %d, want %d", i, shard.StartLine, wantStarts[i])
		}
	}
}

func TestPartitionIsExhaustiveAndDisjoint(t *testing.T) {
	corpus := BuildCorpus(sampleLines(), nil)
	shards := Partition(corpus, 3)
	var reassembled []ParsedLine
	for _, s := range shards {
		reassembled = append(reassembled, s.Lines...)
	}
	if len(reassembled) != len(corpus.Lines) {
		t.Fatalf("reassembled length = %d, want %d", len(reassembled), len(corpus.Lines))
	}
	for i, line := range reassembled {
		if line.Raw != corpus.Lines[i].Raw {
			t.Fatalf("reassembled[%d] = %q, want %q (order not preserved)", i, line.Raw, corpus.Lines[i].Raw)
		}
	}
}

func TestPartitionMoreWorkersThanLinesYieldsEmptyShards(t *testing.T) {
	corpus := BuildCorpus(sampleLines()[:2], nil)
	shards := Partition(corpus, 5)
	empty := 0
	total := 0
	for _, s := range shards {
		total += len(s.Lines)
		if len(s.Lines) == 0 {
			empty++
		}
	}
	if total != 2 {
		t.Fatalf("total lines across shards = %d, want 2", total)
	}
	if empty == 0 {
		t.Fatal("expected at least one empty shard when workers > lines")
	}
}
