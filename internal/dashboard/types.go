// Package dashboard manages the JSON-file-backed admin dashboard
// document: profile, users, invites, system settings and a capped audit
// log. Every mutation rewrites the whole document on disk.
package dashboard

// Profile describes the server owner shown in the admin panel.
type Profile struct {
	Name     string `json:"name"`
	Handle   string `json:"handle"`
	Email    string `json:"email"`
	DeviceID string `json:"deviceId"`
	Role     string `json:"role"`
}

// User is a managed account entry.
type User struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Handle      string  `json:"handle"`
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	Status      string  `json:"status"`
	LastSeen    string  `json:"lastSeen"`
	Joined      string  `json:"joined"`
	Devices     int     `json:"devices"`
	AIUsage     int     `json:"aiUsage"`
	StorageUsed float64 `json:"storageUsed"`
}

// Invite is a registration invite code.
type Invite struct {
	ID        int    `json:"id"`
	Code      string `json:"code"`
	CreatedBy string `json:"createdBy"`
	Uses      int    `json:"uses"`
	MaxUses   int    `json:"maxUses"`
	ExpiresAt string `json:"expiresAt"`
	Status    string `json:"status"`
}

// LogEntry is one line of the in-document audit trail, newest first.
type LogEntry struct {
	ID        int    `json:"id"`
	Timestamp string `json:"timestamp"`
	User      string `json:"user"`
	Action    string `json:"action"`
	IP        string `json:"ip"`
	Status    string `json:"status"`
}

// Document is the full dashboard aggregate persisted as one JSON file.
type Document struct {
	Profile        Profile                `json:"profile"`
	Users          []User                 `json:"users"`
	SystemSettings map[string]interface{} `json:"systemSettings"`
	Invites        []Invite               `json:"invites"`
	Logs           []LogEntry             `json:"logs"`
}

// maxLogEntries caps the in-document audit trail; older entries drop off.
const maxLogEntries = 200

// DefaultSystemSettings returns the fixed system settings defaults.
func DefaultSystemSettings() map[string]interface{} {
	return map[string]interface{}{
		"allowRegistration":        false,
		"requireEmailVerification": false,
		"aiRateLimit":              0,
		"storagePerUser":           0,
		"maxDevicesPerUser":        0,
		"sessionTimeout":           0,
		"enableBackups":            false,
		"backupFrequency":          "manual",
		"maintenanceMode":          false,
		"debugMode":                false,
	}
}

// DefaultDocument returns a fresh empty dashboard document.
func DefaultDocument() *Document {
	return &Document{
		Users:          []User{},
		SystemSettings: DefaultSystemSettings(),
		Invites:        []Invite{},
		Logs:           []LogEntry{},
	}
}

// CreateUserRequest is the payload for adding a user.
type CreateUserRequest struct {
	Name   string `json:"name" binding:"required"`
	Handle string `json:"handle" binding:"required"`
	Email  string `json:"email" binding:"required"`
	Role   string `json:"role"`
}

// UpdateUserRequest carries the user fields that may be patched. Nil
// pointers mean "leave untouched".
type UpdateUserRequest struct {
	Name        *string  `json:"name"`
	Handle      *string  `json:"handle"`
	Email       *string  `json:"email"`
	Role        *string  `json:"role"`
	Status      *string  `json:"status"`
	LastSeen    *string  `json:"lastSeen"`
	Devices     *int     `json:"devices"`
	AIUsage     *int     `json:"aiUsage"`
	StorageUsed *float64 `json:"storageUsed"`
}

// Empty reports whether the request patches nothing.
func (r *UpdateUserRequest) Empty() bool {
	return r.Name == nil && r.Handle == nil && r.Email == nil &&
		r.Role == nil && r.Status == nil && r.LastSeen == nil &&
		r.Devices == nil && r.AIUsage == nil && r.StorageUsed == nil
}

// CreateInviteRequest is the payload for generating an invite.
type CreateInviteRequest struct {
	MaxUses     *int `json:"maxUses"`
	ExpiresDays *int `json:"expiresDays"`
}
