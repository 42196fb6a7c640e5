package dashboard

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "dashboard_data.json"))
	store.Load()
	return store
}

func writeDocument(t *testing.T, path string, doc map[string]interface{}) {
	t.Helper()
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestUserIDAssignment(t *testing.T) {
	store := newTestStore(t)

	for i, handle := range []string{"@a", "@b", "@c"} {
		user := store.CreateUser(CreateUserRequest{Name: "U", Handle: handle, Email: handle + "@x.com"})
		if user.ID != i+1 {
			t.Errorf("user %s got id %d, expected %d", handle, user.ID, i+1)
		}
	}

	// Deleting does not free ids: next id stays max+1.
	if _, err := store.DeleteUser(2); err != nil {
		t.Fatal(err)
	}
	user := store.CreateUser(CreateUserRequest{Name: "U", Handle: "@d", Email: "d@x.com"})
	if user.ID != 4 {
		t.Errorf("id after deletion = %d, expected 4", user.ID)
	}
}

func TestCreateUserDefaults(t *testing.T) {
	store := newTestStore(t)
	store.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }

	user := store.CreateUser(CreateUserRequest{Name: "A", Handle: "@a", Email: "a@x.com"})

	if user.Status != "online" {
		t.Errorf("status = %q, expected online", user.Status)
	}
	if user.LastSeen != "Just now" {
		t.Errorf("lastSeen = %q", user.LastSeen)
	}
	if user.Joined != "2026-08-30" {
		t.Errorf("joined = %q", user.Joined)
	}
	if user.Role != "user" {
		t.Errorf("role = %q, expected default user", user.Role)
	}
	if user.Devices != 0 || user.AIUsage != 0 || user.StorageUsed != 0 {
		t.Error("usage counters should start at zero")
	}

	doc := store.Snapshot()
	if len(doc.Logs) == 0 || doc.Logs[0].Action != "User created: @a" {
		t.Errorf("expected creation log entry, got %+v", doc.Logs)
	}
}

func TestUpdateUserPartial(t *testing.T) {
	store := newTestStore(t)
	created := store.CreateUser(CreateUserRequest{Name: "A", Handle: "@a", Email: "a@x.com"})

	status := "offline"
	devices := 3
	updated, err := store.UpdateUser(created.ID, UpdateUserRequest{Status: &status, Devices: &devices})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != "offline" || updated.Devices != 3 {
		t.Errorf("updated fields not applied: %+v", updated)
	}
	if updated.Name != "A" || updated.Email != "a@x.com" {
		t.Errorf("unsupplied fields must stay untouched: %+v", updated)
	}

	if _, err := store.UpdateUser(99, UpdateUserRequest{Status: &status}); err != ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	store := newTestStore(t)
	created := store.CreateUser(CreateUserRequest{Name: "A", Handle: "@a", Email: "a@x.com"})

	removed, err := store.DeleteUser(created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if removed.ID != created.ID || removed.Handle != "@a" {
		t.Errorf("removed record mismatch: %+v", removed)
	}

	doc := store.Snapshot()
	if len(doc.Users) != 0 {
		t.Errorf("users should be empty, got %d", len(doc.Users))
	}
	if doc.Logs[0].Action != "User deleted: @a" {
		t.Errorf("top log entry = %q", doc.Logs[0].Action)
	}

	if _, err := store.DeleteUser(created.ID); err != ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDemoDataDiscarded(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]interface{}
	}{
		{
			name: "demo profile name",
			doc: map[string]interface{}{
				"profile": map[string]interface{}{"name": "Alex Rivera"},
			},
		},
		{
			name: "demo user handle",
			doc: map[string]interface{}{
				"users": []interface{}{
					map[string]interface{}{"id": 1, "handle": "@sofia"},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "dashboard_data.json")
			writeDocument(t, path, tt.doc)

			store := NewStore(path)
			store.Load()

			doc := store.Snapshot()
			if len(doc.Users) != 0 {
				t.Errorf("demo users should be discarded, got %d", len(doc.Users))
			}
			if doc.Profile.Name != "" {
				t.Errorf("demo profile should be discarded, got %q", doc.Profile.Name)
			}
		})
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard_data.json")
	writeDocument(t, path, map[string]interface{}{
		"profile": map[string]interface{}{"name": "Sam", "handle": "@sam"},
		"systemSettings": map[string]interface{}{
			"maintenanceMode": true,
		},
	})

	store := NewStore(path)
	store.Load()

	doc := store.Snapshot()
	if doc.Profile.Name != "Sam" || doc.Profile.Handle != "@sam" {
		t.Errorf("loaded profile lost: %+v", doc.Profile)
	}
	if doc.SystemSettings["maintenanceMode"] != true {
		t.Error("loaded system setting lost")
	}
	// Defaults fill the gaps.
	if doc.SystemSettings["backupFrequency"] != "manual" {
		t.Errorf("default system setting missing: %v", doc.SystemSettings["backupFrequency"])
	}
	if doc.Users == nil || doc.Invites == nil || doc.Logs == nil {
		t.Error("missing top-level members should be repaired")
	}
}

func TestLoadCorruptFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard_data.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(path)
	store.Load()

	doc := store.Snapshot()
	if len(doc.Users) != 0 || len(doc.Logs) != 0 {
		t.Error("corrupt file should yield the empty default document")
	}
	if doc.SystemSettings["backupFrequency"] != "manual" {
		t.Error("default system settings expected after fallback")
	}
}

func TestLogCap(t *testing.T) {
	store := newTestStore(t)

	for i := 1; i <= 205; i++ {
		store.AddLog(fmt.Sprintf("action %d", i), "system")
	}

	doc := store.Snapshot()
	if len(doc.Logs) != 200 {
		t.Fatalf("log count = %d, expected 200", len(doc.Logs))
	}
	if doc.Logs[0].Action != "action 205" {
		t.Errorf("newest entry should be first, got %q", doc.Logs[0].Action)
	}
	if doc.Logs[199].Action != "action 6" {
		t.Errorf("oldest surviving entry = %q, expected action 6", doc.Logs[199].Action)
	}
}

func TestCreateInvite(t *testing.T) {
	store := newTestStore(t)
	store.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }

	invite := store.CreateInvite(5, 0) // expiresDays floored to 1

	if matched, _ := regexp.MatchString(`^INV-2026-[A-Z0-9]{4}$`, invite.Code); !matched {
		t.Errorf("invite code %q does not match expected format", invite.Code)
	}
	if invite.ExpiresAt != "2026-08-31" {
		t.Errorf("expiresAt = %q, expected 2026-08-31 (floored to 1 day)", invite.ExpiresAt)
	}
	if invite.Uses != 0 || invite.MaxUses != 5 {
		t.Errorf("uses/maxUses = %d/%d", invite.Uses, invite.MaxUses)
	}
	if invite.CreatedBy != "system" {
		t.Errorf("createdBy = %q, expected system when profile handle empty", invite.CreatedBy)
	}
	if invite.Status != "active" {
		t.Errorf("status = %q", invite.Status)
	}
}

func TestDeleteInvite(t *testing.T) {
	store := newTestStore(t)
	invite := store.CreateInvite(5, 45)

	removed, err := store.DeleteInvite(invite.ID)
	if err != nil {
		t.Fatal(err)
	}
	if removed.Code != invite.Code {
		t.Errorf("removed code = %q, expected %q", removed.Code, invite.Code)
	}

	if _, err := store.DeleteInvite(invite.ID); err != ErrInviteNotFound {
		t.Errorf("expected ErrInviteNotFound, got %v", err)
	}
}

func TestUpdateSystemSettingsAcceptsUnknownKeys(t *testing.T) {
	store := newTestStore(t)

	merged := store.UpdateSystemSettings(map[string]interface{}{
		"maintenanceMode": true,
		"customFlag":      "yes",
	})

	if merged["maintenanceMode"] != true {
		t.Error("known key not merged")
	}
	if merged["customFlag"] != "yes" {
		t.Error("unknown keys must still be accepted")
	}
	if merged["backupFrequency"] != "manual" {
		t.Error("untouched defaults must survive")
	}

	doc := store.Snapshot()
	if doc.Logs[0].Action != "System settings updated" {
		t.Errorf("log entry = %q", doc.Logs[0].Action)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard_data.json")
	store := NewStore(path)
	store.Load()
	store.CreateUser(CreateUserRequest{Name: "A", Handle: "@a", Email: "a@x.com"})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("document not persisted: %v", err)
	}
	if !strings.Contains(string(data), "\n") {
		t.Error("persisted document should be indented")
	}

	reloaded := NewStore(path)
	reloaded.Load()
	doc := reloaded.Snapshot()
	if len(doc.Users) != 1 || doc.Users[0].Handle != "@a" {
		t.Errorf("reloaded users = %+v", doc.Users)
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]interface{}{
		"a": map[string]interface{}{"x": 1, "y": 2},
		"b": "default",
		"c": 3,
	}
	src := map[string]interface{}{
		"a": map[string]interface{}{"y": 20, "z": 30},
		"b": []interface{}{"replaced"},
	}

	out := deepMerge(dst, src)

	inner := out["a"].(map[string]interface{})
	if inner["x"] != 1 || inner["y"] != 20 || inner["z"] != 30 {
		t.Errorf("map merge wrong: %v", inner)
	}
	if _, ok := out["b"].([]interface{}); !ok {
		t.Error("non-map values should be replaced outright")
	}
	if out["c"] != 3 {
		t.Error("keys absent from src must survive")
	}
}
