package session

import (
	"sync"
	"testing"
)

func TestStoreLifecycle(t *testing.T) {
	s := NewStore()

	if _, ok := s.Current(); ok {
		t.Fatal("fresh store reports an identity")
	}
	if s.Token() != "" {
		t.Fatalf("fresh store token = %q", s.Token())
	}

	s.Establish(Identity{
		AccountID:     "acc-1",
		AccountNumber: "1000000001",
		DisplayName:   "Ana García",
		Token:         "tok-1",
	})
	id, ok := s.Current()
	if !ok {
		t.Fatal("no identity after establish")
	}
	if id.AccountID != "acc-1" || id.Token != "tok-1" {
		t.Fatalf("identity = %+v", id)
	}
	if s.Token() != "tok-1" {
		t.Fatalf("token = %q", s.Token())
	}

	// re-login replaces wholesale
	s.Establish(Identity{AccountID: "acc-2", Token: "tok-2"})
	if s.Token() != "tok-2" {
		t.Fatalf("token after replace = %q", s.Token())
	}

	s.Clear()
	if _, ok := s.Current(); ok {
		t.Fatal("identity survives clear")
	}
	if s.Token() != "" {
		t.Fatalf("token survives clear: %q", s.Token())
	}
}

func TestCurrentReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Establish(Identity{AccountID: "acc-1"})
	id, _ := s.Current()
	id.AccountID = "mutated"
	again, _ := s.Current()
	if again.AccountID != "acc-1" {
		t.Fatal("caller mutation leaked into the store")
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Establish(Identity{Token: "tok"})
		}()
		go func() {
			defer wg.Done()
			_ = s.Token()
			_, _ = s.Current()
		}()
	}
	wg.Wait()
}
