package catalog

import "testing"

func TestKeywordSearch_AccentInsensitive(t *testing.T) {
	records := []CardRecord{
		{ID: "sv3-1", Name: "Flabébé"},
		{ID: "sv3-2", Name: "Charmander"},
	}

	got := KeywordSearch(records, "flabebe", 0)
	if len(got) != 1 || got[0].ID != "sv3-1" {
		t.Fatalf("accent-folded match failed: %+v", got)
	}
}

func TestKeywordSearch_AllTokensMustMatch(t *testing.T) {
	records := []CardRecord{
		{ID: "sv3-86", Name: "Charmeleon", SetCode: "sv3"},
		{ID: "swsh1-24", Name: "Charmeleon", SetCode: "swsh1"},
	}

	got := KeywordSearch(records, "charmeleon swsh1", 0)
	if len(got) != 1 || got[0].ID != "swsh1-24" {
		t.Fatalf("AND semantics broken: %+v", got)
	}
}

func TestKeywordSearch_OrdersByIDAndLimits(t *testing.T) {
	records := []CardRecord{
		{ID: "b", Name: "Pidgey"},
		{ID: "a", Name: "Pidgey"},
		{ID: "c", Name: "Pidgey"},
	}

	got := KeywordSearch(records, "pidgey", 2)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("unexpected order/limit: %+v", got)
	}
}

func TestKeywordSearch_EmptyQuery(t *testing.T) {
	records := []CardRecord{{ID: "a", Name: "Pidgey"}}
	if got := KeywordSearch(records, "   ", 0); len(got) != 0 {
		t.Fatalf("empty query should match nothing: %+v", got)
	}
}
