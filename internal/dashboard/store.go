package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/thelocal/backend/pkg/logger"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrInviteNotFound = errors.New("invite not found")
)

// demo fingerprint: seeded placeholder data shipped with early builds of
// the web UI. It must never be loaded as real state.
const demoProfileName = "Alex Rivera"

var demoHandles = map[string]bool{
	"@alex":   true,
	"@sofia":  true,
	"@marcus": true,
	"@emily":  true,
	"@david":  true,
	"@rachel": true,
}

// Store owns the dashboard document. One mutex serialises every
// read-modify-persist sequence; the whole document is rewritten on each
// mutation.
type Store struct {
	mu   sync.Mutex
	path string
	doc  *Document
	now  func() time.Time
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
		doc:  DefaultDocument(),
		now:  time.Now,
	}
}

// Load reads the backing file if present. Demo data is discarded in
// favour of the empty default; otherwise the loaded document is
// deep-merged over the defaults. Any read or parse failure falls back to
// the default document.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = s.loadDocument()
	s.ensureDefaultsLocked()
}

func (s *Store) loadDocument() *Document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warnf("Failed to read dashboard data: %v", err)
		}
		return DefaultDocument()
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warnf("Failed to parse dashboard data: %v", err)
		return DefaultDocument()
	}

	if looksLikeDemoData(raw) {
		logger.Infof("Demo dashboard data detected; resetting to empty state")
		return DefaultDocument()
	}

	merged := deepMerge(documentToMap(DefaultDocument()), raw)
	doc, err := mapToDocument(merged)
	if err != nil {
		logger.Warnf("Failed to decode dashboard data: %v", err)
		return DefaultDocument()
	}
	return doc
}

func looksLikeDemoData(raw map[string]interface{}) bool {
	if profile, ok := raw["profile"].(map[string]interface{}); ok {
		if profile["name"] == demoProfileName {
			return true
		}
	}
	users, ok := raw["users"].([]interface{})
	if !ok {
		return false
	}
	for _, u := range users {
		user, ok := u.(map[string]interface{})
		if !ok {
			continue
		}
		if handle, ok := user["handle"].(string); ok && demoHandles[handle] {
			return true
		}
	}
	return false
}

func documentToMap(doc *Document) map[string]interface{} {
	data, _ := json.Marshal(doc)
	var m map[string]interface{}
	_ = json.Unmarshal(data, &m)
	return m
}

func mapToDocument(m map[string]interface{}) (*Document, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ensureDefaultsLocked repairs a loaded document so every expected
// top-level member and every default system setting exists. Idempotent.
func (s *Store) ensureDefaultsLocked() {
	if s.doc.Users == nil {
		s.doc.Users = []User{}
	}
	if s.doc.Invites == nil {
		s.doc.Invites = []Invite{}
	}
	if s.doc.Logs == nil {
		s.doc.Logs = []LogEntry{}
	}
	if s.doc.SystemSettings == nil {
		s.doc.SystemSettings = map[string]interface{}{}
	}
	for key, value := range DefaultSystemSettings() {
		if _, ok := s.doc.SystemSettings[key]; !ok {
			s.doc.SystemSettings[key] = value
		}
	}
}

// Snapshot returns a deep copy of the current document.
func (s *Store) Snapshot() Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := Document{
		Profile:        s.doc.Profile,
		Users:          append([]User{}, s.doc.Users...),
		Invites:        append([]Invite{}, s.doc.Invites...),
		Logs:           append([]LogEntry{}, s.doc.Logs...),
		SystemSettings: make(map[string]interface{}, len(s.doc.SystemSettings)),
	}
	for k, v := range s.doc.SystemSettings {
		out.SystemSettings[k] = v
	}
	return out
}

// CreateUser appends a new user with the next free id and persists.
func (s *Store) CreateUser(req CreateUserRequest) User {
	s.mu.Lock()
	defer s.mu.Unlock()

	role := req.Role
	if role == "" {
		role = "user"
	}
	user := User{
		ID:       nextUserID(s.doc.Users),
		Name:     req.Name,
		Handle:   req.Handle,
		Email:    req.Email,
		Role:     role,
		Status:   "online",
		LastSeen: "Just now",
		Joined:   s.now().UTC().Format("2006-01-02"),
	}
	s.doc.Users = append(s.doc.Users, user)
	s.addLogLocked("User created: "+user.Handle, user.Handle)
	s.persistLocked()
	return user
}

// UpdateUser patches the supplied fields of an existing user.
func (s *Store) UpdateUser(id int, req UpdateUserRequest) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Users {
		if s.doc.Users[i].ID != id {
			continue
		}
		user := &s.doc.Users[i]
		if req.Name != nil {
			user.Name = *req.Name
		}
		if req.Handle != nil {
			user.Handle = *req.Handle
		}
		if req.Email != nil {
			user.Email = *req.Email
		}
		if req.Role != nil {
			user.Role = *req.Role
		}
		if req.Status != nil {
			user.Status = *req.Status
		}
		if req.LastSeen != nil {
			user.LastSeen = *req.LastSeen
		}
		if req.Devices != nil {
			user.Devices = *req.Devices
		}
		if req.AIUsage != nil {
			user.AIUsage = *req.AIUsage
		}
		if req.StorageUsed != nil {
			user.StorageUsed = *req.StorageUsed
		}
		s.addLogLocked("User updated: "+user.Handle, user.Handle)
		s.persistLocked()
		return *user, nil
	}
	return User{}, ErrUserNotFound
}

// DeleteUser removes a user and returns the removed record.
func (s *Store) DeleteUser(id int) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, user := range s.doc.Users {
		if user.ID != id {
			continue
		}
		s.doc.Users = append(s.doc.Users[:i], s.doc.Users[i+1:]...)
		s.addLogLocked("User deleted: "+user.Handle, "system")
		s.persistLocked()
		return user, nil
	}
	return User{}, ErrUserNotFound
}

// CreateInvite generates a new invite code. expiresDays is floored at 1.
// Code uniqueness is probabilistic, not enforced.
func (s *Store) CreateInvite(maxUses, expiresDays int) Invite {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expiresDays < 1 {
		expiresDays = 1
	}
	createdBy := s.doc.Profile.Handle
	if createdBy == "" {
		createdBy = "system"
	}
	invite := Invite{
		ID:        nextInviteID(s.doc.Invites),
		Code:      s.generateInviteCode(),
		CreatedBy: createdBy,
		MaxUses:   maxUses,
		ExpiresAt: s.now().UTC().AddDate(0, 0, expiresDays).Format("2006-01-02"),
		Status:    "active",
	}
	s.doc.Invites = append(s.doc.Invites, invite)
	s.addLogLocked("Invite created: "+invite.Code, "system")
	s.persistLocked()
	return invite
}

// DeleteInvite removes an invite and returns the removed record.
func (s *Store) DeleteInvite(id int) (Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, invite := range s.doc.Invites {
		if invite.ID != id {
			continue
		}
		s.doc.Invites = append(s.doc.Invites[:i], s.doc.Invites[i+1:]...)
		s.addLogLocked("Invite deleted: "+invite.Code, "system")
		s.persistLocked()
		return invite, nil
	}
	return Invite{}, ErrInviteNotFound
}

// UpdateSystemSettings merges the supplied keys into the settings
// sub-map. Keys outside the predefined defaults are still accepted.
func (s *Store) UpdateSystemSettings(partial map[string]interface{}) map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range partial {
		s.doc.SystemSettings[key] = value
	}
	s.addLogLocked("System settings updated", "system")
	s.persistLocked()

	out := make(map[string]interface{}, len(s.doc.SystemSettings))
	for k, v := range s.doc.SystemSettings {
		out[k] = v
	}
	return out
}

// AddLog inserts an audit entry outside of a store mutation.
func (s *Store) AddLog(action, user string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addLogLocked(action, user)
	s.persistLocked()
}

func (s *Store) addLogLocked(action, user string) {
	if user == "" {
		user = "system"
	}
	entry := LogEntry{
		ID:        nextLogID(s.doc.Logs),
		Timestamp: s.now().UTC().Format("2006-01-02 15:04:05"),
		User:      user,
		Action:    action,
		IP:        "localhost",
		Status:    "success",
	}
	s.doc.Logs = append([]LogEntry{entry}, s.doc.Logs...)
	if len(s.doc.Logs) > maxLogEntries {
		s.doc.Logs = s.doc.Logs[:maxLogEntries]
	}
}

func (s *Store) generateInviteCode() string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = charset[rand.Intn(len(charset))]
	}
	return fmt.Sprintf("INV-%d-%s", s.now().UTC().Year(), suffix)
}

func (s *Store) persistLocked() {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		logger.Errorf("Failed to encode dashboard data: %v", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		logger.Errorf("Failed to write dashboard data: %v", err)
	}
}

func nextUserID(users []User) int {
	max := 0
	for _, u := range users {
		if u.ID > max {
			max = u.ID
		}
	}
	return max + 1
}

func nextInviteID(invites []Invite) int {
	max := 0
	for _, inv := range invites {
		if inv.ID > max {
			max = inv.ID
		}
	}
	return max + 1
}

func nextLogID(logs []LogEntry) int {
	max := 0
	for _, l := range logs {
		if l.ID > max {
			max = l.ID
		}
	}
	return max + 1
}
