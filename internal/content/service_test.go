package content_test

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/biocactus/biocactus/internal/content"
)

func sampleQuestions() []content.Question {
	return []content.Question{
		{
			Question:      "What does DNA stand for?",
			Options:       []string{"Deoxyribonucleic acid", "Ribonucleic acid", "Nucleotide array", "Dinucleic acid"},
			CorrectAnswer: "Deoxyribonucleic acid",
			Explanation:   "DNA is deoxyribonucleic acid, the carrier of genetic information.",
		},
		{
			Question:      "Which enzyme unwinds the double helix?",
			Options:       []string{"Helicase", "Polymerase", "Ligase", "Primase"},
			CorrectAnswer: "Helicase",
			Explanation:   "Helicase separates the two strands ahead of the replication fork.",
		},
	}
}

func TestGetOrGenerate_MissGeneratesAndCaches(t *testing.T) {
	svc := content.NewService(content.NewMemoryStore(), nil)

	calls := 0
	gen := func(context.Context) []content.Question {
		calls++
		return sampleQuestions()
	}

	questions, cached, err := svc.GetOrGenerate(t.Context(), "dna", "en", gen)
	if err != nil {
		t.Fatalf("GetOrGenerate() error = %v", err)
	}
	if cached {
		t.Error("cached = true on first call, want false")
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}
	if calls != 1 {
		t.Errorf("generator calls = %d, want 1", calls)
	}
}

func TestGetOrGenerate_HitSkipsGenerator(t *testing.T) {
	svc := content.NewService(content.NewMemoryStore(), nil)

	calls := 0
	gen := func(context.Context) []content.Question {
		calls++
		return sampleQuestions()
	}

	first, _, err := svc.GetOrGenerate(t.Context(), "dna", "en", gen)
	if err != nil {
		t.Fatalf("first GetOrGenerate() error = %v", err)
	}
	second, cached, err := svc.GetOrGenerate(t.Context(), "dna", "en", gen)
	if err != nil {
		t.Fatalf("second GetOrGenerate() error = %v", err)
	}

	if !cached {
		t.Error("cached = false on second call, want true")
	}
	if calls != 1 {
		t.Errorf("generator calls = %d, want 1 (cache hit must not regenerate)", calls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("second call returned different content than the first")
	}
}

func TestGetOrGenerate_LanguagesAreSeparateKeys(t *testing.T) {
	svc := content.NewService(content.NewMemoryStore(), nil)

	calls := 0
	gen := func(context.Context) []content.Question {
		calls++
		return sampleQuestions()
	}

	if _, _, err := svc.GetOrGenerate(t.Context(), "dna", "en", gen); err != nil {
		t.Fatalf("GetOrGenerate(en) error = %v", err)
	}
	if _, _, err := svc.GetOrGenerate(t.Context(), "dna", "ta", gen); err != nil {
		t.Fatalf("GetOrGenerate(ta) error = %v", err)
	}

	if calls != 2 {
		t.Errorf("generator calls = %d, want 2 (one per language)", calls)
	}
}

func TestGetOrGenerate_EmptyResultNotCached(t *testing.T) {
	store := content.NewMemoryStore()
	svc := content.NewService(store, nil)

	calls := 0
	failing := func(context.Context) []content.Question {
		calls++
		return nil
	}

	questions, cached, err := svc.GetOrGenerate(t.Context(), "dna", "en", failing)
	if err != nil {
		t.Fatalf("GetOrGenerate() error = %v", err)
	}
	if cached || len(questions) != 0 {
		t.Errorf("got cached=%v questions=%d, want uncached empty set", cached, len(questions))
	}

	// A later call retries generation instead of serving a poisoned entry.
	working := func(context.Context) []content.Question { return sampleQuestions() }
	questions, _, err = svc.GetOrGenerate(t.Context(), "dna", "en", working)
	if err != nil {
		t.Fatalf("retry GetOrGenerate() error = %v", err)
	}
	if len(questions) != 2 {
		t.Errorf("retry got %d questions, want 2", len(questions))
	}
	if calls != 1 {
		t.Errorf("failing generator calls = %d, want 1", calls)
	}
}

func TestGetOrGenerate_ConcurrentMissesSingleEntry(t *testing.T) {
	store := content.NewMemoryStore()
	svc := content.NewService(store, nil)

	var mu sync.Mutex
	calls := 0
	gen := func(context.Context) []content.Question {
		mu.Lock()
		calls++
		mu.Unlock()
		return sampleQuestions()
	}

	const workers = 8
	results := make([][]content.Question, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q, _, err := svc.GetOrGenerate(context.Background(), "dna", "en", gen)
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
				return
			}
			results[i] = q
		}(i)
	}
	wg.Wait()

	// Regardless of how many workers generated, every caller must observe
	// the same persisted content.
	entry, err := store.Get(t.Context(), "dna", "en")
	if err != nil {
		t.Fatalf("Get() after concurrent misses error = %v", err)
	}
	for i, r := range results {
		if !reflect.DeepEqual(r, entry.Questions) {
			t.Errorf("worker %d observed content differing from the persisted entry", i)
		}
	}
}

func TestPutIfAbsent_SecondWriterLoses(t *testing.T) {
	store := content.NewMemoryStore()

	entry := &content.Entry{TopicID: "dna", Language: "en", Questions: sampleQuestions()}
	created, err := store.PutIfAbsent(t.Context(), entry)
	if err != nil {
		t.Fatalf("PutIfAbsent() error = %v", err)
	}
	if !created {
		t.Fatal("first PutIfAbsent() created = false, want true")
	}

	other := &content.Entry{TopicID: "dna", Language: "en", Questions: sampleQuestions()[:1]}
	created, err = store.PutIfAbsent(t.Context(), other)
	if err != nil {
		t.Fatalf("second PutIfAbsent() error = %v", err)
	}
	if created {
		t.Fatal("second PutIfAbsent() created = true, want false")
	}

	got, err := store.Get(t.Context(), "dna", "en")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Questions) != 2 {
		t.Errorf("stored questions = %d, want the first writer's 2", len(got.Questions))
	}
}

func TestPutIfAbsent_RejectsEmptySet(t *testing.T) {
	store := content.NewMemoryStore()

	_, err := store.PutIfAbsent(t.Context(), &content.Entry{TopicID: "dna", Language: "en"})
	if err == nil {
		t.Fatal("PutIfAbsent() with empty questions should fail")
	}
}

func TestKey(t *testing.T) {
	if got := content.Key("dna", "ta"); got != "dna_ta" {
		t.Errorf("Key() = %q, want dna_ta", got)
	}
}
