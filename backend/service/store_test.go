package service

import (
	"errors"
	"os"
	"reflect"
	"sync"
	"testing"

	"github.com/AnTengye/contractdesk/backend/model"
)

func newTestStore(t *testing.T, ids ...string) *ContractStore {
	t.Helper()
	store := NewContractStore(LedgerContracts)
	records := make([]model.Contract, len(ids))
	for i, id := range ids {
		records[i] = model.Contract{ID: id, ContractNumber: "NO-" + id}
	}
	if err := store.Seed(records); err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}
	return store
}

func TestContractStoreSeedAndGet(t *testing.T) {
	store := newTestStore(t, "a", "b")

	got, err := store.Get("a")
	if err != nil {
		t.Fatalf("Expected to retrieve contract: %v", err)
	}
	if got.ContractNumber != "NO-a" {
		t.Errorf("Expected NO-a, got %s", got.ContractNumber)
	}

	if _, err := store.Get("missing"); !errors.Is(err, ErrContractNotFound) {
		t.Errorf("Expected ErrContractNotFound, got %v", err)
	}
	if store.Count() != 2 {
		t.Errorf("Expected 2 contracts, got %d", store.Count())
	}
}

func TestContractStoreSeedGeneratesIDs(t *testing.T) {
	store := NewContractStore(LedgerLending)
	if err := store.Seed([]model.Contract{{ContractNumber: "X"}, {ContractNumber: "Y"}}); err != nil {
		t.Fatalf("Failed to seed: %v", err)
	}
	snap := store.Snapshot()
	if snap.Records[0].ID == "" || snap.Records[0].ID == snap.Records[1].ID {
		t.Errorf("Expected distinct generated ids, got %q and %q", snap.Records[0].ID, snap.Records[1].ID)
	}
}

func TestContractStoreSeedDuplicate(t *testing.T) {
	store := NewContractStore(LedgerContracts)
	err := store.Seed([]model.Contract{{ID: "a"}, {ID: "a"}})
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Expected ErrDuplicateID, got %v", err)
	}
}

func TestContractStoreSnapshotIsCopy(t *testing.T) {
	store := NewContractStore(LedgerContracts)
	store.Seed([]model.Contract{{
		ID:        "a",
		Approvals: []model.ApprovalStep{{Role: "經辦人", Name: "王"}},
	}})

	snap := store.Snapshot()
	snap.Records[0].Vendor = "changed"
	snap.Records[0].Approvals[0].Name = "changed"

	got, _ := store.Get("a")
	if got.Vendor != "" || got.Approvals[0].Name != "王" {
		t.Error("Expected snapshot mutation not to reach the store")
	}
}

func TestContractStoreSnapshotOrder(t *testing.T) {
	store := newTestStore(t, "c", "a", "b")
	snap := store.Snapshot()
	for i, want := range []string{"c", "a", "b"} {
		if snap.Records[i].ID != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, snap.Records[i].ID)
		}
	}
}

func TestContractStoreEditBumpsVersion(t *testing.T) {
	store := newTestStore(t, "a")
	before := store.Snapshot().Version

	_, err := store.Edit("a", func(c *model.Contract) {
		c.Vendor = "Acme"
		c.EndDate = model.ParseDate("2025/01/01")
	})
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	got, _ := store.Get("a")
	if got.Vendor != "Acme" || got.EndDate.String() != "2025/01/01" {
		t.Errorf("Expected updated record, got %+v", got)
	}
	if store.Snapshot().Version == before {
		t.Error("Expected version bump after edit")
	}
}

func TestContractStoreEdit(t *testing.T) {
	store := newTestStore(t, "a")
	if _, err := store.SetAttachment("a", model.ExternalAttachment("https://example.com/a.pdf")); err != nil {
		t.Fatal(err)
	}

	got, err := store.Edit("a", func(c *model.Contract) { c.Vendor = "Acme" })
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if got.Vendor != "Acme" || got.Attachment.URL != "https://example.com/a.pdf" {
		t.Errorf("Expected vendor edited and attachment kept, got %+v", got)
	}

	if _, err := store.Edit("missing", func(*model.Contract) {}); !errors.Is(err, ErrContractNotFound) {
		t.Errorf("Expected ErrContractNotFound, got %v", err)
	}
}

func TestContractStoreEditConcurrentWithToggles(t *testing.T) {
	store := newTestStore(t, "a")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Edit("a", func(c *model.Contract) { c.Note = "edited" })
		}()
		go func() {
			defer wg.Done()
			store.ToggleLendingCompleted("a")
		}()
	}
	wg.Wait()

	got, _ := store.Get("a")
	if got.LendingCompleted {
		t.Error("Expected an even number of toggles to survive concurrent edits")
	}
	if got.Note != "edited" {
		t.Errorf("Expected edited note, got %q", got.Note)
	}
}

func TestContractStoreBulkDelete(t *testing.T) {
	store := NewContractStore(LedgerLending)
	survivor := model.Contract{
		ID:             "c",
		ContractNumber: "NO-c",
		Attachment:     model.UploadedAttachment("lending/c/key/scan.pdf", "scan.pdf", "application/pdf", 2048),
		Approvals: []model.ApprovalStep{
			{Role: "借用單位", Name: "周志明", Status: model.ApprovalApproved, Date: model.ParseDate("2024/05/02")},
			{Role: "合約保管單位", Name: "黃淑芬", Status: model.ApprovalPending},
		},
		LendingCompleted: true,
	}
	err := store.Seed([]model.Contract{
		{ID: "a", ContractNumber: "NO-a"},
		{ID: "b", ContractNumber: "NO-b", Attachment: model.ExternalAttachment("https://example.com/b.pdf")},
		survivor,
		{ID: "d", ContractNumber: "NO-d"},
	})
	if err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}
	before := store.Snapshot().Version

	removed := store.BulkDelete([]string{"b", "d", "missing"})
	if len(removed) != 2 {
		t.Fatalf("Expected 2 removed, got %d", len(removed))
	}
	if store.Count() != 2 {
		t.Errorf("Expected 2 remaining, got %d", store.Count())
	}
	if _, err := store.Get("b"); !errors.Is(err, ErrContractNotFound) {
		t.Error("Expected b to be gone")
	}
	got, err := store.Get("c")
	if err != nil {
		t.Fatalf("Expected c to survive reindexing, got %v", err)
	}
	if !reflect.DeepEqual(got, survivor) {
		t.Errorf("Expected survivor unchanged\n got %+v\nwant %+v", got, survivor)
	}
	if store.Snapshot().Version == before {
		t.Error("Expected version bump after delete")
	}
}

func TestContractStoreBulkDeleteNothing(t *testing.T) {
	store := newTestStore(t, "a")
	before := store.Snapshot().Version

	if removed := store.BulkDelete([]string{"missing"}); removed != nil {
		t.Errorf("Expected nothing removed, got %v", removed)
	}
	if store.Snapshot().Version != before {
		t.Error("Expected version unchanged")
	}
}

func TestContractStoreSetAttachment(t *testing.T) {
	store := newTestStore(t, "a")

	prev, err := store.SetAttachment("a", model.ExternalAttachment("https://example.com/a.pdf"))
	if err != nil {
		t.Fatalf("SetAttachment failed: %v", err)
	}
	if prev.Present() {
		t.Error("Expected no previous attachment")
	}

	prev, _ = store.SetAttachment("a", model.NoAttachment())
	if prev.URL != "https://example.com/a.pdf" {
		t.Errorf("Expected previous external attachment, got %+v", prev)
	}

	if _, err := store.SetAttachment("missing", model.NoAttachment()); !errors.Is(err, ErrContractNotFound) {
		t.Errorf("Expected ErrContractNotFound, got %v", err)
	}
}

func TestContractStoreLendingToggles(t *testing.T) {
	store := newTestStore(t, "a")

	c, err := store.ToggleLendingCompleted("a")
	if err != nil || !c.LendingCompleted {
		t.Errorf("Expected lending completed, got %v %v", c.LendingCompleted, err)
	}
	c, _ = store.ToggleLendingCompleted("a")
	if c.LendingCompleted {
		t.Error("Expected second toggle to clear the flag")
	}

	c, _ = store.ToggleManagerConfirmed("a")
	if !c.ManagerConfirmed {
		t.Error("Expected manager confirmed")
	}

	if _, err := store.ToggleManagerConfirmed("missing"); !errors.Is(err, ErrContractNotFound) {
		t.Errorf("Expected ErrContractNotFound, got %v", err)
	}
}

func TestLoadSeed(t *testing.T) {
	tmp, err := os.CreateTemp("", "seed-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmp.Name())
	tmp.WriteString(`
contracts:
  - id: c1
    no: A-001
    dept: 資訊處
    start_date: "2024/01/10"
    end_date: "2025/01/09"
    renewal: "Y"
    attachment:
      kind: external
      url: https://example.com/a.pdf
lending:
  - id: l1
    no: L-001
    start_date: "2024/05/01"
    approvals:
      - role: 借用單位經辦
        name: 林小華
        status: APPROVED
        date: "2024/05/02"
`)
	tmp.Close()

	seed, err := LoadSeed(tmp.Name())
	if err != nil {
		t.Fatalf("LoadSeed failed: %v", err)
	}
	if len(seed.Contracts) != 1 || len(seed.Lending) != 1 {
		t.Fatalf("Expected 1+1 records, got %d+%d", len(seed.Contracts), len(seed.Lending))
	}
	if seed.Contracts[0].EndDate.String() != "2025/01/09" {
		t.Errorf("Expected end date 2025/01/09, got %s", seed.Contracts[0].EndDate)
	}
	if !seed.Contracts[0].Attachment.Present() {
		t.Error("Expected external attachment")
	}
	if seed.Lending[0].Approvals[0].Status != model.ApprovalApproved {
		t.Errorf("Expected approved step, got %s", seed.Lending[0].Approvals[0].Status)
	}

	ledgers, err := NewLedgers(seed)
	if err != nil {
		t.Fatalf("NewLedgers failed: %v", err)
	}
	if ledgers.Get(LedgerContracts).Count() != 1 || ledgers.Get(LedgerLending).Count() != 1 {
		t.Error("Expected each ledger seeded with one record")
	}
	if ledgers.Get("unknown") != nil {
		t.Error("Expected nil for unknown ledger")
	}
}

func TestLoadSeedErrors(t *testing.T) {
	if _, err := LoadSeed("nonexistent.yaml"); err == nil {
		t.Error("Expected error for missing seed file")
	}

	tmp, _ := os.CreateTemp("", "seed-*.yaml")
	defer os.Remove(tmp.Name())
	tmp.WriteString("contracts: [")
	tmp.Close()
	if _, err := LoadSeed(tmp.Name()); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestMalformedColumns(t *testing.T) {
	c := model.Contract{
		StartDate:       model.ParseDate("2024/13/01"),
		EndDate:         model.ParseDate("2025/01/09"),
		ApplicationDate: model.ParseDate("soon"),
	}
	got := malformedColumns(&c)
	want := []string{"start_date", "app_date"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if cols := malformedColumns(&model.Contract{}); cols != nil {
		t.Errorf("Expected no malformed columns for empty dates, got %v", cols)
	}
}
