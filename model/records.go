package model

// Permission is a capability granted by a key type.
type Permission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

func (p Permission) RecordID() string { return p.ID }

// KeyType groups the permissions a key grants.
type KeyType struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Permissions []Permission `json:"permissions"`
	CreatedAt   *string      `json:"created_at,omitempty"`
	UpdatedAt   *string      `json:"updated_at,omitempty"`
}

func (k KeyType) RecordID() string { return k.ID }

// ClientInfo is the client summary embedded in a key.
type ClientInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Key is a license key.
type Key struct {
	ID          string       `json:"id"`
	Code        string       `json:"code"`
	DueDate     string       `json:"due_date,omitempty"`
	InitDate    string       `json:"init_date,omitempty"`
	BatchID     string       `json:"batch_id,omitempty"`
	State       Status       `json:"state"`
	ClientID    string       `json:"client_id,omitempty"`
	Client      *ClientInfo  `json:"client,omitempty"`
	KeyType     KeyType      `json:"key_type"`
	Permissions []Permission `json:"permissions,omitempty"`
	CreatedAt   string       `json:"created_at"`
	UpdatedAt   string       `json:"updated_at"`
}

func (k Key) RecordID() string { return k.ID }

// ClientName returns the owning client's name, or empty when unassigned.
func (k Key) ClientName() string {
	if k.Client == nil {
		return ""
	}
	return k.Client.Name
}

// Client is a customer that receives keys.
type Client struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Company   string `json:"company,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

func (c Client) RecordID() string { return c.ID }

// KeyStatusCount is the number of keys of a batch in one state.
type KeyStatusCount struct {
	BatchID string `json:"batch_id"`
	State   Status `json:"state"`
	Count   int    `json:"count"`
}

// Batch is a group of keys issued together.
type Batch struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Quantity        int              `json:"quantity"`
	Description     string           `json:"description"`
	KeyStatusCounts []KeyStatusCount `json:"key_status_counts"`
	Keys            []Key            `json:"keys,omitempty"`
	CreatedAt       string           `json:"created_at"`
	UpdatedAt       string           `json:"updated_at"`
}

func (b Batch) RecordID() string { return b.ID }

// ComputerInfo describes the machine a key was used from.
type ComputerInfo struct {
	ID           string `json:"id"`
	ComputerName string `json:"computer_name"`
	IP           string `json:"ip"`
	OS           string `json:"os"`
	State        string `json:"state"`
	KeyLoginID   string `json:"key_login_id"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// KeyLogin records one activation of a key.
type KeyLogin struct {
	ID           string        `json:"id"`
	Date         string        `json:"date"`
	KeyID        string        `json:"key_id"`
	IP           string        `json:"ip"`
	ComputerInfo *ComputerInfo `json:"computer_info,omitempty"`
	CreatedAt    string        `json:"created_at"`
	UpdatedAt    string        `json:"updated_at"`
}

func (k KeyLogin) RecordID() string { return k.ID }

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type RecentBatch struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	CreatedAt string `json:"created_at"`
}

// DashboardStats is the summary returned by the dashboard endpoint.
type DashboardStats struct {
	TotalClients      int           `json:"total_clients"`
	TotalKeys         int           `json:"total_keys"`
	TotalBatches      int           `json:"total_batches"`
	TotalUsers        int           `json:"total_users"`
	KeysByStatus      []StatusCount `json:"keys_by_status"`
	RecentBatches     []RecentBatch `json:"recent_batches"`
	KeysExpiringMonth int           `json:"keys_expiring_month"`
	ActiveClients     int           `json:"active_clients"`
}
